package status

// Status is the outbound telemetry snapshot. Readings that were unavailable
// this tick stay nil and are omitted from the published payload.
type Status struct {
	AirTemp      *float64 `json:"airTemp,omitempty"`
	EvapTemp     *float64 `json:"evapTemp,omitempty"`
	AirRaw       *float64 `json:"airRaw,omitempty"`
	EvapRaw      *float64 `json:"evapRaw,omitempty"`
	CompressorOn *bool    `json:"compressorOn,omitempty"`

	Mode   string `json:"mode"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`

	DutyPercent   *float64 `json:"dutyPercent,omitempty"`
	AdaptiveShift *float64 `json:"adaptiveShift,omitempty"`
	FreezeLocked  *bool    `json:"freezeLocked,omitempty"`
	FreezeLocks   *int64   `json:"freezeLocks,omitempty"`
	TurboActive   *bool    `json:"turboActive,omitempty"`
	LimpMode      *bool    `json:"limpMode,omitempty"`
	WaitSeconds   *int64   `json:"waitSeconds,omitempty"`

	MeterPowerW   *float64 `json:"meterPowerW,omitempty"`
	MeterCurrentA *float64 `json:"meterCurrentA,omitempty"`

	Alarms []string `json:"alarms,omitempty"`
}

// Map flattens the snapshot for key-value consumers, skipping absent values.
func (s Status) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if s.AirTemp != nil {
		m["airTemp"] = *s.AirTemp
	}
	if s.EvapTemp != nil {
		m["evapTemp"] = *s.EvapTemp
	}
	if s.AirRaw != nil {
		m["airRaw"] = *s.AirRaw
	}
	if s.EvapRaw != nil {
		m["evapRaw"] = *s.EvapRaw
	}
	if s.CompressorOn != nil {
		m["compressorOn"] = boolToInt(*s.CompressorOn)
	}
	m["mode"] = s.Mode
	m["reason"] = s.Reason
	m["detail"] = s.Detail
	if s.DutyPercent != nil {
		m["dutyPercent"] = *s.DutyPercent
	}
	if s.AdaptiveShift != nil {
		m["adaptiveShift"] = *s.AdaptiveShift
	}
	if s.FreezeLocked != nil {
		m["freezeLocked"] = boolToInt(*s.FreezeLocked)
	}
	if s.FreezeLocks != nil {
		m["freezeLocks"] = *s.FreezeLocks
	}
	if s.TurboActive != nil {
		m["turboActive"] = boolToInt(*s.TurboActive)
	}
	if s.LimpMode != nil {
		m["limpMode"] = boolToInt(*s.LimpMode)
	}
	if s.WaitSeconds != nil {
		m["waitSeconds"] = *s.WaitSeconds
	}
	if s.MeterPowerW != nil {
		m["meterPowerW"] = *s.MeterPowerW
	}
	if s.MeterCurrentA != nil {
		m["meterCurrentA"] = *s.MeterCurrentA
	}
	return m
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
