package common

import (
	"errors"
	"fmt"

	"github.com/questx-lab/giveaway/internal/entity"
)

// Capabilities is what an owner plan allows a campaign to configure.
type Capabilities struct {
	Referral   bool
	Social     bool
	MaxWinners int
}

var planCapabilities = map[entity.OwnerPlan]Capabilities{
	entity.FreePlan: {Referral: false, Social: false, MaxWinners: 1},
	entity.ProPlan:  {Referral: true, Social: true, MaxWinners: 100},
}

func CapabilitiesOf(plan entity.OwnerPlan) (Capabilities, error) {
	c, ok := planCapabilities[plan]
	if !ok {
		return Capabilities{}, fmt.Errorf("unknown plan %s", plan)
	}

	return c, nil
}

// Check returns an error if cfg enables something the plan does not allow.
func (c Capabilities) Check(cfg entity.EntryConfig) error {
	for _, kind := range cfg.EnabledKinds() {
		if kind.IsReferral() && !c.Referral {
			return errors.New("referral entries require a pro plan")
		}

		if kind.IsSocial() && !c.Social {
			return fmt.Errorf("%s entries require a pro plan", kind)
		}
	}

	if cfg.NumWinners > c.MaxWinners {
		return fmt.Errorf("the plan allows at most %d winners", c.MaxWinners)
	}

	return nil
}
