package app

type Reason struct {
	Code    string
	Message string
}

func (r Reason) ReasonCode() string {
	return r.Code
}

func NewReason(c, m string) Reason {
	return Reason{Code: c, Message: m}
}

var (
	// 命令解析
	ReasonBadTileKey      = NewReason("BAD_TILE_KEY", "tile key must be x-y")
	ReasonBadBuildingType = NewReason("BAD_BUILDING_TYPE", "unknown building type")
	ReasonBadSpeed        = NewReason("BAD_SPEED", "speed must be a positive finite number")
	ReasonBadPayload      = NewReason("BAD_PAYLOAD", "command payload is malformed")
	ReasonEmpireNotFound  = NewReason("EMPIRE_NOT_FOUND", "empire does not exist in this game")
	ReasonEmpireIsAI      = NewReason("EMPIRE_IS_AI", "AI empires cannot be controlled by clients")
)

var (
	// 快照与存储
	ReasonSnapshotChecksum = NewReason("SNAPSHOT_CHECKSUM_MISMATCH", "snapshot checksum mismatch")
	ReasonSnapshotDecode   = NewReason("SNAPSHOT_DECODE_FAIL", "snapshot decode failed")
	ReasonSnapshotFields   = NewReason("SNAPSHOT_MISSING_FIELDS", "snapshot is missing players or tiles")
	ReasonSnapshotVersion  = NewReason("SNAPSHOT_VERSION", "unsupported snapshot format or version")
	ReasonRepoUnavailable  = NewReason("SNAPSHOT_REPO_UNAVAILABLE", "snapshot repository unavailable")
	ReasonActorTimeout     = NewReason("ACTOR_TIMEOUT", "game actor did not answer in time")
)

// GetErrorReasonCode 取错误链上第一个 *Error 的 data.reason。
func GetErrorReasonCode(err error) string {
	e := asError(err)
	if e == nil {
		return ""
	}
	return e.Reason()
}

// IsBizRejectedError 业务拒绝（非技术故障）。
func IsBizRejectedError(err error) bool {
	e := asError(err)
	return e != nil && !e.IsSys()
}

func GetErrorMessage(err error) string {
	e := asError(err)
	if e == nil {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return e.Msg()
}
