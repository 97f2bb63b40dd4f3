// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for simulation, economy and server settings.
//
// Values come from three layers, each overriding the previous one:
// compiled defaults, an optional YAML file (SIM_CONFIG_FILE) and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig describes the play field and the visible viewport.
type WorldConfig struct {
	Width          float64 `yaml:"width"`          // Play field width in world units
	Height         float64 `yaml:"height"`         // Play field height in world units
	ViewportWidth  float64 `yaml:"viewportWidth"`  // Visible area used for culling
	ViewportHeight float64 `yaml:"viewportHeight"` // Visible area used for culling
	Seed           int64   `yaml:"seed"`           // RNG seed, 0 = time based
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Width:          800,
		Height:         600,
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

// =============================================================================
// LOOP CONFIGURATION
// =============================================================================

// LoopConfig controls the fixed-timestep driver.
type LoopConfig struct {
	FrameRate        int           `yaml:"frameRate"`        // Displayed frames per second for headless runs
	MaxStepsPerFrame int           `yaml:"maxStepsPerFrame"` // Catch-up ceiling per displayed frame
	InputBuffer      int           `yaml:"inputBuffer"`      // Pending command capacity
	SnapshotLimit    int           `yaml:"snapshotLimit"`    // Max entities copied into one snapshot
	RenderLogEvery   int           `yaml:"renderLogEvery"`   // Log every Nth render failure
	CommandTimeout   time.Duration `yaml:"commandTimeout"`   // How long API callers wait for a reply
}

// DefaultLoop returns the default loop configuration.
func DefaultLoop() LoopConfig {
	return LoopConfig{
		FrameRate:        60,
		MaxStepsPerFrame: 5,
		InputBuffer:      256,
		SnapshotLimit:    2000,
		RenderLogEvery:   120,
		CommandTimeout:   2 * time.Second,
	}
}

// =============================================================================
// POPULATION CONFIGURATION
// =============================================================================

// PopulationConfig controls walker and zombie populations and their pools.
type PopulationConfig struct {
	WalkerTarget        int           `yaml:"walkerTarget"`        // Standing walker population
	WalkerSpawnInterval time.Duration `yaml:"walkerSpawnInterval"` // Spawn cadence while below target
	WalkerSize          float64       `yaml:"walkerSize"`
	WalkerSpawnMargin   float64       `yaml:"walkerSpawnMargin"`   // Distance outside the edge at spawn
	WanderMargin        float64       `yaml:"wanderMargin"`        // Interior margin for wander targets
	ArriveDistance      float64       `yaml:"arriveDistance"`      // Retarget when this close
	StopDistance        float64       `yaml:"stopDistance"`        // Zero velocity when this close
	RetargetMin         time.Duration `yaml:"retargetMin"`
	RetargetMax         time.Duration `yaml:"retargetMax"`
	SpeedJitter         float64       `yaml:"speedJitter"` // ±fraction applied to base speed
	WalkerPoolInitial   int           `yaml:"walkerPoolInitial"`
	WalkerPoolMax       int           `yaml:"walkerPoolMax"`

	ZombieSize        float64 `yaml:"zombieSize"`
	ZombieBaseSpeed   float64 `yaml:"zombieBaseSpeed"`
	ZombieSeekRange   float64 `yaml:"zombieSeekRange"`
	ZombieSpawnMargin float64 `yaml:"zombieSpawnMargin"` // Clamp margin for requested spawn points
	ZombiePoolInitial int     `yaml:"zombiePoolInitial"`
	ZombiePoolMax     int     `yaml:"zombiePoolMax"`

	ParticlePoolInitial int           `yaml:"particlePoolInitial"`
	ParticlePoolMax     int           `yaml:"particlePoolMax"`
	ParticlesPerDefeat  int           `yaml:"particlesPerDefeat"`
	ParticleLife        time.Duration `yaml:"particleLife"`
}

// DefaultPopulation returns the default population configuration.
func DefaultPopulation() PopulationConfig {
	return PopulationConfig{
		WalkerTarget:        40,
		WalkerSpawnInterval: 100 * time.Millisecond,
		WalkerSize:          20,
		WalkerSpawnMargin:   20,
		WanderMargin:        50,
		ArriveDistance:      10,
		StopDistance:        1,
		RetargetMin:         2 * time.Second,
		RetargetMax:         5 * time.Second,
		SpeedJitter:         0.2,
		WalkerPoolInitial:   40,
		WalkerPoolMax:       100,

		ZombieSize:        24,
		ZombieBaseSpeed:   60,
		ZombieSeekRange:   200,
		ZombieSpawnMargin: 10,
		ZombiePoolInitial: 10,
		ZombiePoolMax:     100,

		ParticlePoolInitial: 50,
		ParticlePoolMax:     300,
		ParticlesPerDefeat:  12,
		ParticleLife:        600 * time.Millisecond,
	}
}

// =============================================================================
// COMBAT CONFIGURATION
// =============================================================================

// CombatConfig is the zombie attack profile.
type CombatConfig struct {
	Damage   float64       `yaml:"damage"`
	Range    float64       `yaml:"range"`
	Cooldown time.Duration `yaml:"cooldown"`
	BaseSoul float64       `yaml:"baseSoul"` // Souls per defeat before the area multiplier
}

// DefaultCombat returns the default combat configuration.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		Damage:   10,
		Range:    5,
		Cooldown: 500 * time.Millisecond,
		BaseSoul: 1,
	}
}

// =============================================================================
// PERFORMANCE CONFIGURATION
// =============================================================================

// LevelThresholds are the culling caps applied at one performance level.
type LevelThresholds struct {
	CullEntities  bool `yaml:"cullEntities"`
	CullParticles bool `yaml:"cullParticles"`
	MaxEntities   int  `yaml:"maxEntities"`
	MaxParticles  int  `yaml:"maxParticles"`
}

// PerformanceConfig controls the adaptive performance monitor.
type PerformanceConfig struct {
	Window          int           `yaml:"window"`         // Frame-time samples kept
	SampleInterval  time.Duration `yaml:"sampleInterval"` // FPS recompute period
	HighFPS         float64       `yaml:"highFps"`
	HighFrameTime   time.Duration `yaml:"highFrameTime"`
	MediumFPS       float64       `yaml:"mediumFps"`
	MediumFrameTime time.Duration `yaml:"mediumFrameTime"`

	High   LevelThresholds `yaml:"high"`
	Medium LevelThresholds `yaml:"medium"`
	Low    LevelThresholds `yaml:"low"`

	HighUpdateFrequency   float64 `yaml:"highUpdateFrequency"`
	MediumUpdateFrequency float64 `yaml:"mediumUpdateFrequency"`
	LowUpdateFrequency    float64 `yaml:"lowUpdateFrequency"`
}

// DefaultPerformance returns the default performance configuration.
func DefaultPerformance() PerformanceConfig {
	return PerformanceConfig{
		Window:          60,
		SampleInterval:  time.Second,
		HighFPS:         50,
		HighFrameTime:   20 * time.Millisecond,
		MediumFPS:       30,
		MediumFrameTime: 33 * time.Millisecond,

		High:   LevelThresholds{CullEntities: false, CullParticles: false, MaxEntities: 1000, MaxParticles: 500},
		Medium: LevelThresholds{CullEntities: true, CullParticles: true, MaxEntities: 300, MaxParticles: 200},
		Low:    LevelThresholds{CullEntities: true, CullParticles: true, MaxEntities: 150, MaxParticles: 50},

		HighUpdateFrequency:   1.0,
		MediumUpdateFrequency: 0.8,
		LowUpdateFrequency:    0.6,
	}
}

// CullingConfig controls the entity culler.
type CullingConfig struct {
	ViewportMargin    float64 `yaml:"viewportMargin"`
	DistanceThreshold float64 `yaml:"distanceThreshold"` // Beyond this, far entities may skip updates
	DistanceFalloff   float64 `yaml:"distanceFalloff"`   // Excess distance that reaches the skip cap
	MaxDistanceSkip   float64 `yaml:"maxDistanceSkip"`
	DefaultPriority   float64 `yaml:"defaultPriority"`
	DistanceWeight    float64 `yaml:"distanceWeight"`
	PriorityWeight    float64 `yaml:"priorityWeight"`
}

// DefaultCulling returns the default culling configuration.
func DefaultCulling() CullingConfig {
	return CullingConfig{
		ViewportMargin:    50,
		DistanceThreshold: 200,
		DistanceFalloff:   1000,
		MaxDistanceSkip:   0.8,
		DefaultPriority:   0.5,
		DistanceWeight:    0.7,
		PriorityWeight:    0.3,
	}
}

// CollisionConfig controls separation and boundary physics.
type CollisionConfig struct {
	SeparationBuffer float64 `yaml:"separationBuffer"`
	SoftMargin       float64 `yaml:"softMargin"`
	FrameSeconds     float64 `yaml:"frameSeconds"`
	WalkerSeparation float64 `yaml:"walkerSeparation"`
	ZombieSeparation float64 `yaml:"zombieSeparation"`
	BounceForce      float64 `yaml:"bounceForce"`
	GridCellSize     float64 `yaml:"gridCellSize"`
}

// DefaultCollision returns the default collision configuration.
func DefaultCollision() CollisionConfig {
	return CollisionConfig{
		SeparationBuffer: 5,
		SoftMargin:       20,
		FrameSeconds:     1.0 / 60.0,
		WalkerSeparation: 60,
		ZombieSeparation: 80,
		BounceForce:      120,
		GridCellSize:     64,
	}
}

// =============================================================================
// ECONOMY CONFIGURATION
// =============================================================================

// AreaConfig is one entry of the area table.
type AreaConfig struct {
	ID             int      `yaml:"id"`
	Name           string   `yaml:"name"`
	WalkerHealth   float64  `yaml:"walkerHealth"`
	WalkerSpeed    float64  `yaml:"walkerSpeed"`
	SoulMultiplier float64  `yaml:"soulMultiplier"`
	WalkerColors   []string `yaml:"walkerColors"`
	UnlockAt       int      `yaml:"unlockAt"` // Walkers defeated required
}

// DefaultAreas returns the built-in area table.
func DefaultAreas() []AreaConfig {
	return []AreaConfig{
		{
			ID: 1, Name: "Graveyard", WalkerHealth: 20, WalkerSpeed: 40, SoulMultiplier: 1,
			WalkerColors: []string{"#f5d6b4", "#e0ac69", "#c68642", "#8d5524"},
		},
		{
			ID: 2, Name: "Village", WalkerHealth: 40, WalkerSpeed: 50, SoulMultiplier: 2,
			WalkerColors: []string{"#6c5ce7", "#00b894", "#fdcb6e"}, UnlockAt: 100,
		},
		{
			ID: 3, Name: "City", WalkerHealth: 80, WalkerSpeed: 60, SoulMultiplier: 5,
			WalkerColors: []string{"#0984e3", "#d63031", "#dfe6e9", "#2d3436"}, UnlockAt: 500,
		},
	}
}

// UpgradeConfig prices one upgrade track.
type UpgradeConfig struct {
	BaseCost float64 `yaml:"baseCost"`
	Growth   float64 `yaml:"growth"`
	MaxLevel int     `yaml:"maxLevel"` // 0 = unlimited
}

// UpgradesConfig holds every upgrade track.
type UpgradesConfig struct {
	ZombieSpeed    UpgradeConfig `yaml:"zombieSpeed"`
	ZombieCapacity UpgradeConfig `yaml:"zombieCapacity"`
}

// DefaultUpgrades returns the default upgrade pricing.
func DefaultUpgrades() UpgradesConfig {
	return UpgradesConfig{
		ZombieSpeed:    UpgradeConfig{BaseCost: 10, Growth: 1.5, MaxLevel: 20},
		ZombieCapacity: UpgradeConfig{BaseCost: 25, Growth: 1.6, MaxLevel: 38},
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int      `yaml:"port"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond"`
	Burst             int      `yaml:"burst"`
	CORSOrigins       []string `yaml:"corsOrigins"`
	BroadcastHz       int      `yaml:"broadcastHz"`
	CommandsPerSecond float64  `yaml:"commandsPerSecond"` // Per-client text command rate
	CommandBurst      int      `yaml:"commandBurst"`
	AdminToken        string   `yaml:"-"` // Guards mutating routes; empty leaves them open
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              3000,
		RequestsPerSecond: 20,
		Burst:             40,
		BroadcastHz:       10,
		CommandsPerSecond: 2,
		CommandBurst:      5,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv(cfg ServerConfig) ServerConfig {
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if b := getEnvInt("RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}
	if tok := os.Getenv("ADMIN_TOKEN"); tok != "" {
		cfg.AdminToken = tok
	}
	return cfg
}

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr"` // MUST stay on localhost in production
}

// DefaultObservability returns safe defaults.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// PersistenceConfig controls the save store.
type PersistenceConfig struct {
	AppName          string        `yaml:"appName"`
	Enabled          bool          `yaml:"enabled"`
	AutosaveInterval time.Duration `yaml:"autosaveInterval"`
	EventLogPath     string        `yaml:"eventLogPath"`
}

// DefaultPersistence returns the default persistence configuration.
func DefaultPersistence() PersistenceConfig {
	return PersistenceConfig{
		AppName:          "soul_harvest",
		Enabled:          true,
		AutosaveInterval: 5 * time.Second,
	}
}

// AudioConfig controls sound cues in the interactive front ends.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Volume      float64 `yaml:"volume"`      // 0.0-1.0 for cues
	MusicPath   string  `yaml:"musicPath"`   // Optional OGG Vorbis loop
	MusicVolume float64 `yaml:"musicVolume"` // Keep low so cues stay audible
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		Enabled:     true,
		Volume:      0.5,
		MusicVolume: 0.15,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World         WorldConfig         `yaml:"world"`
	Loop          LoopConfig          `yaml:"loop"`
	Population    PopulationConfig    `yaml:"population"`
	Combat        CombatConfig        `yaml:"combat"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Culling       CullingConfig       `yaml:"culling"`
	Collision     CollisionConfig     `yaml:"collision"`
	Areas         []AreaConfig        `yaml:"areas"`
	Upgrades      UpgradesConfig      `yaml:"upgrades"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
	Persistence   PersistenceConfig   `yaml:"persistence"`
	Audio         AudioConfig         `yaml:"audio"`
}

// Default returns the complete configuration without any overrides.
func Default() AppConfig {
	return AppConfig{
		World:         DefaultWorld(),
		Loop:          DefaultLoop(),
		Population:    DefaultPopulation(),
		Combat:        DefaultCombat(),
		Performance:   DefaultPerformance(),
		Culling:       DefaultCulling(),
		Collision:     DefaultCollision(),
		Areas:         DefaultAreas(),
		Upgrades:      DefaultUpgrades(),
		Server:        DefaultServer(),
		Observability: DefaultObservability(),
		Persistence:   DefaultPersistence(),
		Audio:         DefaultAudio(),
	}
}

// Load returns the complete configuration with file and environment overrides.
func Load() (AppConfig, error) {
	cfg := Default()

	if path := os.Getenv("SIM_CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if w := getEnvFloat("WORLD_WIDTH", 0); w > 0 {
		cfg.World.Width = w
		cfg.World.ViewportWidth = w
	}
	if h := getEnvFloat("WORLD_HEIGHT", 0); h > 0 {
		cfg.World.Height = h
		cfg.World.ViewportHeight = h
	}
	if s := getEnvInt("SIM_SEED", 0); s != 0 {
		cfg.World.Seed = int64(s)
	}
	if n := getEnvInt("WALKER_TARGET", -1); n >= 0 {
		cfg.Population.WalkerTarget = n
	}
	if n := getEnvInt("MAX_STEPS_PER_FRAME", 0); n > 0 {
		cfg.Loop.MaxStepsPerFrame = n
	}
	if fps := getEnvInt("FRAME_RATE", 0); fps > 0 {
		cfg.Loop.FrameRate = fps
	}
	if d := getEnvDuration("ZOMBIE_ATTACK_COOLDOWN", 0); d > 0 {
		cfg.Combat.Cooldown = d
	}
	if d := getEnvDuration("AUTOSAVE_INTERVAL", 0); d > 0 {
		cfg.Persistence.AutosaveInterval = d
	}
	if os.Getenv("PERSISTENCE_ENABLED") == "false" {
		cfg.Persistence.Enabled = false
	}
	if p := os.Getenv("EVENT_LOG_PATH"); p != "" {
		cfg.Persistence.EventLogPath = p
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Audio.Enabled = false
	}
	if p := os.Getenv("MUSIC_PATH"); p != "" {
		cfg.Audio.MusicPath = p
	}
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Observability.Enabled = false
	}
	cfg.Server = ServerFromEnv(cfg.Server)
}

// Validate rejects configurations the simulation cannot run with.
func (c AppConfig) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %.0fx%.0f", c.World.Width, c.World.Height)
	}
	if c.Loop.MaxStepsPerFrame <= 0 {
		return fmt.Errorf("maxStepsPerFrame must be positive, got %d", c.Loop.MaxStepsPerFrame)
	}
	if c.Population.RetargetMax < c.Population.RetargetMin {
		return fmt.Errorf("retargetMax %v is below retargetMin %v", c.Population.RetargetMax, c.Population.RetargetMin)
	}
	if c.Combat.Damage < 0 || c.Combat.Range < 0 || c.Combat.Cooldown < 0 {
		return fmt.Errorf("combat values cannot be negative: %+v", c.Combat)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 || c.Audio.MusicVolume < 0 || c.Audio.MusicVolume > 1 {
		return fmt.Errorf("audio volumes must be within 0..1")
	}
	if len(c.Areas) == 0 {
		return fmt.Errorf("at least one area is required")
	}
	seen := make(map[int]bool, len(c.Areas))
	for _, a := range c.Areas {
		if seen[a.ID] {
			return fmt.Errorf("duplicate area id %d", a.ID)
		}
		seen[a.ID] = true
		if a.WalkerHealth <= 0 {
			return fmt.Errorf("area %d: walkerHealth must be positive, got %v", a.ID, a.WalkerHealth)
		}
		if a.WalkerSpeed < 0 || a.SoulMultiplier < 0 {
			return fmt.Errorf("area %d: speed and soul multiplier cannot be negative", a.ID)
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
