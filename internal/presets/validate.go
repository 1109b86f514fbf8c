package presets

import (
	"fmt"

	"github.com/wonny/leadscan/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(f *File) error {
	if f.Meta.ID == "" {
		return ValidationError{"meta.id", "required"}
	}
	if len(f.Presets) == 0 {
		return ValidationError{"presets", "at least one preset required"}
	}

	seen := make(map[string]bool, len(f.Presets))
	for i, p := range f.Presets {
		field := func(name string) string {
			return fmt.Sprintf("presets[%d].%s", i, name)
		}

		if p.Name == "" {
			return ValidationError{field("name"), "required"}
		}
		if seen[p.Name] {
			return ValidationError{field("name"), fmt.Sprintf("duplicate preset %q", p.Name)}
		}
		seen[p.Name] = true

		if p.TopN != nil && *p.TopN < 1 {
			return ValidationError{field("top_n"), "must be >= 1"}
		}
		if p.OrderPct != nil && *p.OrderPct < contracts.MinPercent {
			return ValidationError{field("order_pct"), fmt.Sprintf("must be >= %d", contracts.MinPercent)}
		}
		if p.StopLossPct != nil && *p.StopLossPct < contracts.MinPercent {
			return ValidationError{field("stop_loss_pct"), fmt.Sprintf("must be >= %d", contracts.MinPercent)}
		}
		switch contracts.Mover(p.Mover) {
		case "", contracts.MoverGainer, contracts.MoverLoser:
		default:
			return ValidationError{field("mover"), "must be gainer or loser"}
		}
		switch contracts.Side(p.Side) {
		case "", contracts.SideBuy, contracts.SideSell:
		default:
			return ValidationError{field("side"), "must be buy or sell"}
		}
	}

	return nil
}
