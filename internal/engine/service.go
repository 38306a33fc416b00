package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine/handlers"
	"isogrid-server/internal/engine/handlers/actions"
	"isogrid-server/internal/network"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/levels"
	"isogrid-server/pkg/logger"
)

var (
	ErrUnknownLevel  = errors.New("unknown level")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrUnknownAction = errors.New("unknown action")
	ErrBackpressure  = errors.New("instance command queue is full")
)

// GameService - реестр уровней. Каждый уровень крутится в своей горутине,
// сервис только маршрутизирует входы, выходы, команды и варпы.
type GameService struct {
	cfg Config
	Hub *network.Broadcaster

	instances map[int]*Instance
	order     []int

	mu         sync.RWMutex
	locations  map[domain.EntityID]int // игрок -> уровень
	nextPlayer uint64
}

// DefaultHandlers - команды, доступные клиенту.
func DefaultHandlers() map[domain.ActionType]handlers.HandlerFunc {
	return map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionMove: handlers.WithPayload(actions.HandleMove),
		domain.ActionStop: handlers.WithEmptyPayload(actions.HandleStop),
		domain.ActionInit: handlers.WithEmptyPayload(actions.HandleInit),
	}
}

// NewService создает инстанс на каждый уровень. Сид уровня выводится из мастер-сида.
func NewService(cfg Config, lvls map[int]*levels.Level) (*GameService, error) {
	if _, ok := lvls[cfg.StartLevel]; !ok {
		return nil, fmt.Errorf("start level %d: %w", cfg.StartLevel, ErrUnknownLevel)
	}

	s := &GameService{
		cfg:       cfg,
		Hub:       network.NewBroadcaster(),
		instances: make(map[int]*Instance, len(lvls)),
		locations: make(map[domain.EntityID]int),
	}

	for id := range lvls {
		s.order = append(s.order, id)
	}
	sort.Ints(s.order)

	for _, id := range s.order {
		inst := NewInstance(lvls[id], cfg.Sim, cfg.TickRate, cfg.Seed+int64(id))
		inst.Publisher = s.Hub
		inst.Warper = s
		inst.Roster = s
		s.instances[id] = inst
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "service",
		"levels":    len(s.order),
		"start":     cfg.StartLevel,
	}).Info("Game service created")
	return s, nil
}

// Start запускает все инстансы. Возвращает функцию ожидания их остановки.
func (s *GameService) Start(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	for _, id := range s.order {
		inst := s.instances[id]
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst.Run(ctx)
		}()
	}
	return wg.Wait
}

// Instance возвращает инстанс уровня.
func (s *GameService) Instance(levelID int) (*Instance, bool) {
	inst, ok := s.instances[levelID]
	return inst, ok
}

// LevelIDs - ID всех уровней по возрастанию.
func (s *GameService) LevelIDs() []int {
	return append([]int(nil), s.order...)
}

// LevelOf - уровень, на котором сейчас игрок.
func (s *GameService) LevelOf(id domain.EntityID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lvl, ok := s.locations[id]
	return lvl, ok
}

// Join выдает новому игроку ID и ставит его в очередь входа стартового уровня.
// Подписку в хабе вызывающий оформляет сам (до Join, чтобы не пропустить первый снимок).
func (s *GameService) Join(name string) (domain.EntityID, error) {
	inst := s.instances[s.cfg.StartLevel]

	s.mu.Lock()
	s.nextPlayer++
	id := domain.PackEntityID(domain.ActorKindPlayer, s.cfg.StartLevel, s.nextPlayer)
	s.locations[id] = s.cfg.StartLevel
	s.mu.Unlock()

	select {
	case inst.JoinChan <- JoinRequest{ID: id, Name: name}:
	default:
		s.mu.Lock()
		delete(s.locations, id)
		s.mu.Unlock()
		return domain.NoEntity, fmt.Errorf("join level %d: %w", inst.ID, ErrBackpressure)
	}

	logger.Log.WithFields(logrus.Fields{"component": "service", "player": id, "name": name}).Info("Player joining")
	return id, nil
}

// Leave убирает игрока с его текущего уровня.
func (s *GameService) Leave(id domain.EntityID) {
	s.mu.Lock()
	lvl, ok := s.locations[id]
	delete(s.locations, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	inst := s.instances[lvl]
	select {
	case inst.LeaveChan <- id:
	default:
		go func() { inst.LeaveChan <- id }()
	}
}

// ProcessCommand принимает команду от внешнего мира (WebSocket, бот)
// и отправляет ее инстансу, где сейчас находится игрок.
func (s *GameService) ProcessCommand(id domain.EntityID, cmd api.ClientCommand) error {
	action := domain.ParseAction(cmd.Action)
	if !action.ClientFacing() {
		return fmt.Errorf("%q: %w", cmd.Action, ErrUnknownAction)
	}

	lvl, ok := s.LevelOf(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownPlayer)
	}

	select {
	case s.instances[lvl].CommandChan <- InstanceCommand{Cmd: domain.InternalCommand{Action: action, Actor: id, Payload: cmd.Payload}}:
		return nil
	default:
		return fmt.Errorf("level %d: %w", lvl, ErrBackpressure)
	}
}

// Warp реализует Warper. Вызывается из горутины исходного инстанса,
// поэтому в чужой канал пишем без блокировки (или из отдельной горутины).
func (s *GameService) Warp(fromLevel, toLevel int, req JoinRequest) {
	target, ok := s.instances[toLevel]
	entry := logger.Log.WithFields(logrus.Fields{
		"component": "service",
		"player":    req.ID,
		"from":      fromLevel,
		"to":        toLevel,
	})
	if !ok {
		entry.Error("Warp to unknown level, player dropped")
		s.mu.Lock()
		delete(s.locations, req.ID)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if _, online := s.locations[req.ID]; !online {
		// Игрок отключился, пока шел на варп.
		s.mu.Unlock()
		return
	}
	s.locations[req.ID] = toLevel
	s.mu.Unlock()

	select {
	case target.JoinChan <- req:
	default:
		go func() { target.JoinChan <- req }()
	}
	entry.Info("Player warped")
}
