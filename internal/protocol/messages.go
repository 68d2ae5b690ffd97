package protocol

// WelcomeMsg is the first frame an observer receives.
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	TickRateHz      int        `json:"tick_rate_hz"`
	WorldManifest   []WorldRef `json:"world_manifest,omitempty"`
}

type WorldRef struct {
	WorldID   string `json:"world_id"`
	WorldType string `json:"world_type,omitempty"`
	Biome     string `json:"biome,omitempty"`
	BoundaryR int    `json:"boundary_r,omitempty"`
}

// EffectMsg carries one fire-and-forget effect to observers. Fields that do
// not apply to Kind are omitted.
type EffectMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Seq             uint64     `json:"seq"`
	Kind            string     `json:"kind"`
	World           string     `json:"world"`
	Actor           string     `json:"actor,omitempty"`
	Name            string     `json:"name,omitempty"`
	Pos             [3]float64 `json:"pos"`
	Vel             [3]float64 `json:"vel"`
	Count           int        `json:"count,omitempty"`
	Duration        int        `json:"duration_ticks,omitempty"`
	Amplifier       int        `json:"amplifier,omitempty"`
	Amount          float64    `json:"amount,omitempty"`
}

type StateMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Tick            uint64          `json:"tick"`
	Busy            bool            `json:"busy"`
	PendingTimers   int             `json:"pending_timers"`
	Worlds          []WorldState    `json:"worlds"`
	Regions         []RegionRef     `json:"regions,omitempty"`
	LastDispatch    []OutcomeRef    `json:"last_dispatch,omitempty"`
	Ambient         AmbientState    `json:"ambient"`
	Incidents       []IncidentState `json:"incidents"`
}

type WorldState struct {
	WorldID   string `json:"world_id"`
	Weather   string `json:"weather"`
	TimeOfDay int    `json:"time_of_day"`
	Actors    int    `json:"actors"`
	Disabled  bool   `json:"disabled,omitempty"`
}

type IncidentState struct {
	Kind    string  `json:"kind"`
	Enabled bool    `json:"enabled"`
	Chance  float64 `json:"chance"`
	IcyOnly bool    `json:"icy_only,omitempty"`
}

type AmbientState struct {
	Rain    []string `json:"rain"`
	Thunder []string `json:"thunder"`
}

type RegionRef struct {
	Key   string     `json:"key"`
	World string     `json:"world"`
	Pos1  [3]float64 `json:"pos1"`
	Pos2  [3]float64 `json:"pos2"`
}

type OutcomeRef struct {
	Tick  uint64 `json:"tick"`
	World string `json:"world"`
	Actor string `json:"actor,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

type SummonReq struct {
	World string `json:"world"`
	Actor string `json:"actor"`
	Kind  string `json:"kind"`
}

type SummonResp struct {
	Kind string `json:"kind"`
	Tick uint64 `json:"tick"`
}

type RegionReq struct {
	Key   string     `json:"key"`
	World string     `json:"world,omitempty"`
	Pos1  [3]float64 `json:"pos1"`
	Pos2  [3]float64 `json:"pos2"`
}

type RegionResp struct {
	Region RegionRef `json:"region"`
	// Persisted is false when the store write failed; the region is still
	// enforced until the next reload.
	Persisted bool `json:"persisted"`
}

// RegionClearResp mirrors RegionResp for DELETE: the key is cleared in memory
// even when Persisted is false.
type RegionClearResp struct {
	OK        bool   `json:"ok"`
	Key       string `json:"key"`
	Persisted bool   `json:"persisted"`
}

type WeatherReq struct {
	World   string `json:"world"`
	Weather string `json:"weather"`
	Ticks   uint64 `json:"ticks,omitempty"`
}

type JoinReq struct {
	World string `json:"world,omitempty"`
	Name  string `json:"name"`
}

type JoinResp struct {
	World   string     `json:"world"`
	ActorID string     `json:"actor_id"`
	Pos     [3]float64 `json:"pos"`
}

type MoveReq struct {
	World   string     `json:"world"`
	ActorID string     `json:"actor_id"`
	Pos     [3]float64 `json:"pos"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	Suggestion      string `json:"suggestion,omitempty"`
}
