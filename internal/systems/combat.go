package systems

import (
	"isogrid-server/internal/domain"
	"isogrid-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DamageResult - итог одного применения урона.
type DamageResult struct {
	Applied  int
	HPBefore int
	HPAfter  int
	Killed   bool
}

// ApplyDamage наносит amount урона цели. Мертвые и цели без статов урон не получают.
func ApplyDamage(target domain.EntityID, stats *domain.StatsComponent, amount int) DamageResult {
	combatLogger := logger.Log.WithFields(logrus.Fields{
		"component": "combat_system",
		"target_id": target,
		"amount":    amount,
	})

	if stats == nil {
		combatLogger.Warn("Damage ignored: target has no StatsComponent.")
		return DamageResult{}
	}
	if stats.IsDead {
		combatLogger.Debug("Damage ignored: target is already dead.")
		return DamageResult{HPBefore: stats.HP, HPAfter: stats.HP}
	}

	hpBefore := stats.HP
	killed := stats.TakeDamage(amount)

	res := DamageResult{
		Applied:  hpBefore - stats.HP,
		HPBefore: hpBefore,
		HPAfter:  stats.HP,
		Killed:   killed,
	}

	combatLogger.WithFields(logrus.Fields{
		"hp_before":   res.HPBefore,
		"hp_after":    res.HPAfter,
		"target_died": res.Killed,
	}).Info("Damage resolved.")

	return res
}

// BiteConnects - попадает ли укус: цель должна все еще стоять на клетке,
// на которую смотрел моб в момент начала атаки. Убежавшая цель не получает урон.
func BiteConnects(expected domain.GridCell, targetCell domain.GridCell, targetAlive bool) bool {
	return targetAlive && expected == targetCell
}
