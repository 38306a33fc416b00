package agent

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine"
	"isogrid-server/internal/grid"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/logger"
)

// Commander - точка входа команд, та же, что у WebSocket-клиента.
type Commander interface {
	ProcessCommand(id domain.EntityID, cmd api.ClientCommand) error
}

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Он подключается к серверу так же, как обычный игрок: получает снимки уровня
// через хаб и отвечает командами MOVE/STOP. Никакого доступа к симуляции напрямую.
//
// Жизненный цикл:
//  1. NewBot -> вход в игру и регистрация в хабе, получение личного канала (Inbox).
//  2. Run -> запуск в отдельной горутине, слушает свой Inbox.
//  3. На каждый снимок, где бот стоит (IDLE), решает, куда шагать дальше.
type Bot struct {
	EntityID domain.EntityID
	Inbox    <-chan api.ServerResponse

	cmd Commander
	rng *rand.Rand

	// Локальная картина уровня: из полного снимка (сетка + препятствия).
	width, height int
	static        []domain.GridCell

	goal    *domain.GridCell
	holding *domain.Facing
}

// NewBot входит в игру от имени бота и подписывает его на снимки.
func NewBot(service *engine.GameService, name string, seed int64) (*Bot, error) {
	id, err := service.Join(name)
	if err != nil {
		return nil, err
	}
	b := newBot(id, service, seed)
	b.Inbox = service.Hub.Register(id)
	b.log().WithField("name", name).Info("Bot joined")
	return b, nil
}

func newBot(id domain.EntityID, cmd Commander, seed int64) *Bot {
	return &Bot{
		EntityID: id,
		cmd:      cmd,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (b *Bot) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "bot",
		"entity_id": b.EntityID,
	})
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-b.Inbox:
			if !ok {
				b.log().Info("Bot inbox closed, shutting down")
				return
			}
			if !b.Observe(state) {
				b.log().Info("Bot is dead, shutting down")
				return
			}
		}
	}
}

// Observe обрабатывает один снимок. false - бот мертв и дальше не играет.
func (b *Bot) Observe(state api.ServerResponse) bool {
	if state.Type == api.MsgTypeError {
		b.log().WithField("error", state.Error).Debug("Server refused a command")
		return true
	}
	if state.Grid != nil {
		// Новый уровень (вход или варп): старая цель больше не имеет смысла.
		b.learnLevel(state)
	}

	me, ok := b.findSelf(state)
	if !ok || b.width == 0 {
		return true
	}
	if me.Stats != nil && me.Stats.IsDead {
		return false
	}
	if me.State != domain.StateIdle.String() {
		return true
	}

	here := domain.GridCell{X: me.Cell.X, Y: me.Cell.Y}
	facing, ok := b.nextFacing(here, state)
	if !ok {
		b.release()
		return true
	}
	b.hold(facing)
	return true
}

func (b *Bot) learnLevel(state api.ServerResponse) {
	b.width, b.height = state.Grid.Width, state.Grid.Height
	b.static = b.static[:0]
	for _, c := range state.Blocked {
		b.static = append(b.static, domain.GridCell{X: c.X, Y: c.Y})
	}
	b.goal = nil
	b.holding = nil
}

func (b *Bot) findSelf(state api.ServerResponse) (api.ActorView, bool) {
	token := b.EntityID.Token()
	for _, a := range state.Actors {
		if a.ID == token {
			return a, true
		}
	}
	return api.ActorView{}, false
}

// nextFacing строит путь до цели по локальной карте, где остальные акторы - препятствия.
func (b *Bot) nextFacing(here domain.GridCell, state api.ServerResponse) (domain.Facing, bool) {
	occ := grid.NewOccupancyMap(grid.Bounds{Width: b.width, Height: b.height})
	occ.MarkStatic(b.static...)
	token := b.EntityID.Token()
	for _, a := range state.Actors {
		if a.ID != token {
			occ.SetBlocked(domain.GridCell{X: a.Cell.X, Y: a.Cell.Y}, true)
		}
	}
	search := grid.NewAStar(occ)

	for attempt := 0; attempt < 8; attempt++ {
		if b.goal == nil || *b.goal == here {
			b.goal = b.pickGoal(occ, here)
			if b.goal == nil {
				return domain.FacingSW, false
			}
		}
		path := search.Search(here, *b.goal)
		if len(path) >= 2 {
			return domain.MustFacingToward(here, path[1]), true
		}
		b.goal = nil
	}
	return domain.FacingSW, false
}

func (b *Bot) pickGoal(occ *grid.OccupancyMap, here domain.GridCell) *domain.GridCell {
	for attempt := 0; attempt < 32; attempt++ {
		c := domain.GridCell{X: b.rng.Intn(b.width), Y: b.rng.Intn(b.height)}
		if c != here && occ.Walkable(c) {
			return &c
		}
	}
	return nil
}

// --- Хелперы для отправки команд на сервер ---

func (b *Bot) hold(f domain.Facing) {
	if b.holding != nil && *b.holding == f {
		return
	}
	payload, err := json.Marshal(api.FacingPayload{Facing: f.String()})
	if err != nil {
		b.log().WithError(err).Error("Error marshalling payload")
		return
	}
	if b.send(api.ClientCommand{Action: domain.ActionMove.String(), Payload: payload}) {
		b.holding = &f
	}
}

func (b *Bot) release() {
	if b.holding == nil {
		return
	}
	if b.send(api.ClientCommand{Action: domain.ActionStop.String()}) {
		b.holding = nil
	}
}

func (b *Bot) send(cmd api.ClientCommand) bool {
	if err := b.cmd.ProcessCommand(b.EntityID, cmd); err != nil {
		b.log().WithError(err).WithField("action", cmd.Action).Debug("Command not accepted")
		return false
	}
	return true
}
