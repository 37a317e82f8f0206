package enums

import "fmt"

// EnergyType identifies the metered source behind a reduction record.
type EnergyType string

const (
	EnergyTypeElectricity EnergyType = "electricity"
	EnergyTypeGas         EnergyType = "gas"
)

func (t EnergyType) IsValid() bool {
	return t == EnergyTypeElectricity || t == EnergyTypeGas
}

func ParseEnergyType(value string) (EnergyType, error) {
	t := EnergyType(value)
	if !t.IsValid() {
		return "", errInvalidEnum("energy type", value)
	}
	return t, nil
}

func errInvalidEnum(kind, value string) error {
	return fmt.Errorf("invalid %s %q", kind, value)
}
