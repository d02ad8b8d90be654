package service

import (
	"OpenFront/internal/world/ai"
	"OpenFront/internal/world/codec"
	"OpenFront/internal/world/construction"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/grid"
	"OpenFront/internal/world/sim"
	"OpenFront/modules/kit/logx"
	"hash/fnv"
	"math/rand"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// GameConfig 新开局所需的参数，来自配置文件 game 段。
type GameConfig struct {
	Width     int
	Height    int
	Seed      int64 // 0 表示每局随机
	YieldMode string
	MinSpeed  float64
	MaxSpeed  float64
}

// GameService 负责开局、读档和给对局 actor 组装 Simulation。
type GameService struct {
	cfg   GameConfig
	ids   construction.IDGenerator
	log   logx.Logger
	clock func() time.Time
}

var gameIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidGameID 对局 id 只允许字母数字、下划线和连字符。
func ValidGameID(id entity.GameID) bool {
	return gameIDPattern.MatchString(string(id))
}

func NewGameService(cfg GameConfig, ids construction.IDGenerator, log logx.Logger) *GameService {
	return &GameService{cfg: cfg, ids: ids, log: logx.OrNop(log), clock: time.Now}
}

// Now 当前时间，单位秒。
func (s *GameService) Now() float64 {
	return Seconds(s.clock())
}

func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// seedFor 固定种子时同一对局 id 得到同一张地图。
func (s *GameService) seedFor(gameID entity.GameID) int64 {
	if s.cfg.Seed == 0 {
		return s.clock().UnixNano()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(gameID))
	return s.cfg.Seed ^ int64(h.Sum64())
}

// NewGame 按配置生成一局新游戏。
func (s *GameService) NewGame(gameID entity.GameID, now float64) *entity.GameState {
	size := entity.Size{Width: s.cfg.Width, Height: s.cfg.Height}
	state := sim.NewGame(size, grid.YieldsFor(s.cfg.YieldMode, s.seedFor(gameID)), now)
	s.log.Info("new game",
		zap.String("game", string(gameID)),
		zap.Int("width", state.Grid.Width()),
		zap.Int("height", state.Grid.Height()),
		zap.Int("empires", len(state.Empires)))
	return state
}

// Restore 读档；没有存档或存档损坏时新开局。fresh 为 true 表示返回的是新局。
func (s *GameService) Restore(gameID entity.GameID, blob []byte, now float64) (state *entity.GameState, fresh bool) {
	state, err := codec.LoadOrNew(blob, now, func() *entity.GameState {
		fresh = true
		return s.NewGame(gameID, now)
	})
	if err != nil {
		s.log.Warn("snapshot corrupt, starting a new game",
			zap.String("game", string(gameID)),
			zap.Error(err))
	}
	return state, fresh
}

// NewSimulation 组装对局的 Simulation，AI 随机源与对局 id 绑定。
func (s *GameService) NewSimulation(gameID entity.GameID, state *entity.GameState) *sim.Simulation {
	log := s.log.With(zap.String("game", string(gameID)))
	rng := rand.New(rand.NewSource(s.seedFor(gameID)))
	env := sim.Env{
		AI:       ai.NewEngine(rng, s.ids, log),
		IDs:      s.ids,
		Log:      log,
		MinSpeed: s.cfg.MinSpeed,
		MaxSpeed: s.cfg.MaxSpeed,
	}
	return sim.New(state, env)
}
