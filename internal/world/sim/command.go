package sim

import (
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/entity"

	"github.com/go-viper/mapstructure/v2"
)

// 命令类型的外部名字，HTTP/WS/gRPC 统一使用。
const (
	TypeSelectTile  = "SELECT_TILE"
	TypeCaptureTile = "CAPTURE_TILE"
	TypeBuild       = "BUILD"
	TypePauseGame   = "PAUSE_GAME"
	TypeSetSpeed    = "SET_SPEED"
)

// Command 是封闭集合，只有本包内的类型能实现。
type Command interface {
	Actor() entity.EmpireID
	Type() string
	isCommand()
}

type SelectTile struct {
	Empire entity.EmpireID
	Tile   entity.Position
}

type CaptureTile struct {
	Empire entity.EmpireID
	Tile   entity.Position
}

type Build struct {
	Empire   entity.EmpireID
	Tile     entity.Position
	Building entity.BuildingKind
}

type PauseGame struct {
	Empire entity.EmpireID
}

type SetSpeed struct {
	Empire entity.EmpireID
	Speed  float64
}

func (c SelectTile) Actor() entity.EmpireID  { return c.Empire }
func (c CaptureTile) Actor() entity.EmpireID { return c.Empire }
func (c Build) Actor() entity.EmpireID       { return c.Empire }
func (c PauseGame) Actor() entity.EmpireID   { return c.Empire }
func (c SetSpeed) Actor() entity.EmpireID    { return c.Empire }

func (SelectTile) Type() string  { return TypeSelectTile }
func (CaptureTile) Type() string { return TypeCaptureTile }
func (Build) Type() string       { return TypeBuild }
func (PauseGame) Type() string   { return TypePauseGame }
func (SetSpeed) Type() string    { return TypeSetSpeed }

func (SelectTile) isCommand()  {}
func (CaptureTile) isCommand() {}
func (Build) isCommand()       {}
func (PauseGame) isCommand()   {}
func (SetSpeed) isCommand()    {}

type commandPayload struct {
	TileID       string   `mapstructure:"tileId"`
	BuildingType string   `mapstructure:"buildingType"`
	Speed        *float64 `mapstructure:"speed"`
}

// ParseCommand 把 {type, payload} 形式的外部输入转成 Command。
// payload 来自 JSON 解码或 structpb.AsMap，数值可能是字符串，按弱类型解码。
func ParseCommand(actor entity.EmpireID, typ string, payload map[string]any) (Command, error) {
	if actor == "" {
		return nil, app.ErrInvalidCommand.WithReason(app.ReasonEmpireNotFound)
	}
	var p commandPayload
	if len(payload) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &p,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, app.ErrInternalServer.WithCause(err)
		}
		if err := dec.Decode(payload); err != nil {
			return nil, app.ErrInvalidCommand.WithReason(app.ReasonBadPayload).WithCause(err)
		}
	}

	switch typ {
	case TypeSelectTile:
		pos, err := p.tile()
		if err != nil {
			return nil, err
		}
		return SelectTile{Empire: actor, Tile: pos}, nil
	case TypeCaptureTile:
		pos, err := p.tile()
		if err != nil {
			return nil, err
		}
		return CaptureTile{Empire: actor, Tile: pos}, nil
	case TypeBuild:
		pos, err := p.tile()
		if err != nil {
			return nil, err
		}
		kind, ok := entity.ParseBuildingKind(p.BuildingType)
		if !ok {
			return nil, app.ErrInvalidCommand.WithReason(app.ReasonBadBuildingType).WithData("buildingType", p.BuildingType)
		}
		return Build{Empire: actor, Tile: pos, Building: kind}, nil
	case TypePauseGame:
		return PauseGame{Empire: actor}, nil
	case TypeSetSpeed:
		if p.Speed == nil {
			return nil, app.ErrInvalidCommand.WithReason(app.ReasonBadSpeed)
		}
		return SetSpeed{Empire: actor, Speed: *p.Speed}, nil
	default:
		return nil, app.ErrUnknownCommand.WithData("type", typ)
	}
}

func (p commandPayload) tile() (entity.Position, error) {
	pos, ok := entity.ParseKey(p.TileID)
	if !ok {
		return entity.Position{}, app.ErrInvalidCommand.WithReason(app.ReasonBadTileKey).WithData("tileId", p.TileID)
	}
	return pos, nil
}
