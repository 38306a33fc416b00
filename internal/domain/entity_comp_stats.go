package domain

// StatsComponent - здоровье актора. Переживает переход между уровнями.
type StatsComponent struct {
	HP     int  `json:"hp" yaml:"hp"`
	MaxHP  int  `json:"maxHp" yaml:"max_hp"`
	IsDead bool `json:"isDead" yaml:"-"`
}

// NewStats создает компонент с полным здоровьем.
func NewStats(maxHP int) *StatsComponent {
	return &StatsComponent{HP: maxHP, MaxHP: maxHP}
}

// TakeDamage наносит урон. Возвращает true, если цель погибла.
func (s *StatsComponent) TakeDamage(amount int) bool {
	if s.IsDead {
		return false
	}
	if amount < 0 {
		amount = 0
	}

	s.HP -= amount

	if s.HP <= 0 {
		s.HP = 0
		s.IsDead = true
		return true
	}
	return false
}

// Heal лечит сущность
func (s *StatsComponent) Heal(amount int) {
	if s.IsDead {
		return
	}
	s.HP += amount
	if s.HP > s.MaxHP {
		s.HP = s.MaxHP
	}
}

// Clone - копия для переноса данных игрока между уровнями.
func (s *StatsComponent) Clone() *StatsComponent {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
