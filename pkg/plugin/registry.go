package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/justyntemme/notelog/pkg/framework/debug"
	"github.com/justyntemme/notelog/pkg/vst3"
)

// ErrNoPlugin is returned by factory calls made before Register.
var ErrNoPlugin = errors.New("no plugin registered")

// ClassCardinalityManyInstances allows the host to create any number of instances.
const ClassCardinalityManyInstances int32 = 0x7FFFFFFF

// AudioModuleClass is the class category of audio processor components.
const AudioModuleClass = "Audio Module Class"

// FactoryInfo describes the vendor publishing the factory.
type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

// ClassInfo describes the single class the factory exports.
type ClassInfo struct {
	UID         [16]byte
	Cardinality int32
	Category    string
	Name        string
}

// Config controls instance behavior.
type Config struct {
	// LogLevel is the minimum level written by the instance logger.
	LogLevel debug.LogLevel

	// LogFile, when set, sends instance logs to this file instead of Output.
	LogFile string

	// Output receives instance logs when LogFile is empty. Defaults to stderr.
	Output io.Writer

	// LogIncoming asks processors to log note events delivered by the host.
	LogIncoming bool
}

// DefaultConfig returns the configuration used until SetConfig is called.
func DefaultConfig() Config {
	return Config{LogLevel: debug.LogLevelInfo}
}

var (
	globalMu          sync.RWMutex
	globalPlugin      Plugin
	globalFactoryInfo = FactoryInfo{
		Vendor: "notelog",
		URL:    "https://github.com/justyntemme/notelog",
	}
	globalConfig = DefaultConfig()

	components   = make(map[uintptr]*Component)
	componentsMu sync.RWMutex
	nextID       uintptr = 1
)

// Register sets the global plugin instance
func Register(p Plugin) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalPlugin = p
}

// SetFactoryInfo sets the factory information
func SetFactoryInfo(info FactoryInfo) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalFactoryInfo = info
}

// GetFactoryInfo returns the factory information
func GetFactoryInfo() FactoryInfo {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactoryInfo
}

// SetConfig sets the configuration applied to instances created afterwards.
func SetConfig(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetConfig returns the current instance configuration.
func GetConfig() Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

func registered() (Plugin, Config) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalPlugin, globalConfig
}

// CountClasses returns the number of classes the factory exports.
func CountClasses() int32 {
	if p, _ := registered(); p == nil {
		return 0
	}
	return 1
}

// GetClassInfo describes the class at index.
func GetClassInfo(index int32) (ClassInfo, error) {
	p, _ := registered()
	if p == nil {
		return ClassInfo{}, ErrNoPlugin
	}
	if index != 0 {
		return ClassInfo{}, fmt.Errorf("class index %d: %w", index, vst3.ErrInvalidArgument)
	}
	info := p.GetInfo()
	return ClassInfo{
		UID:         info.UID(),
		Cardinality: ClassCardinalityManyInstances,
		Category:    AudioModuleClass,
		Name:        info.Name,
	}, nil
}

// CreateInstance creates a component for the class uid and registers it
// under a fresh handle.
func CreateInstance(uid [16]byte) (*Component, error) {
	p, cfg := registered()
	if p == nil {
		return nil, ErrNoPlugin
	}

	info := p.GetInfo()
	if uid != info.UID() {
		return nil, fmt.Errorf("unknown class %x: %w", uid, vst3.ErrInvalidArgument)
	}

	logger, err := newInstanceLogger(info.Name, cfg)
	if err != nil {
		return nil, err
	}

	processor := p.CreateProcessor()
	if processor == nil {
		closeLogger(logger)
		return nil, fmt.Errorf("%s: CreateProcessor returned nil", info.Name)
	}

	if c, ok := processor.(Configurable); ok {
		if err := c.Configure(cfg, logger); err != nil {
			closeLogger(logger)
			return nil, fmt.Errorf("configure %s: %w", info.Name, err)
		}
	}

	component := newComponent(info, processor, logger)
	registerComponent(component)
	logger.Debug("created instance %d of %s", component.ID(), info.ClassID())
	return component, nil
}

func newInstanceLogger(name string, cfg Config) (*debug.Logger, error) {
	var logger *debug.Logger
	if cfg.LogFile != "" {
		l, err := debug.NewFileLogger(cfg.LogFile, name, debug.DefaultFlags)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger = l
	} else {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		logger = debug.New(out, name, debug.DefaultFlags)
	}
	logger.SetLevel(cfg.LogLevel)
	return logger, nil
}

func closeLogger(l *debug.Logger) {
	_ = l.Close()
}

// registerComponent assigns c a handle and records it.
func registerComponent(c *Component) uintptr {
	componentsMu.Lock()
	defer componentsMu.Unlock()
	id := nextID
	nextID++
	c.id = id
	components[id] = c
	return id
}

// Lookup returns the component registered under id, or nil.
func Lookup(id uintptr) *Component {
	componentsMu.RLock()
	defer componentsMu.RUnlock()

	if id == 0 {
		return nil
	}
	return components[id]
}

// Release unregisters the component with handle id and closes its logger.
func Release(id uintptr) {
	componentsMu.Lock()
	c, ok := components[id]
	delete(components, id)
	componentsMu.Unlock()

	if ok {
		closeLogger(c.logger)
	}
}

// InstanceCount returns the number of live components.
func InstanceCount() int {
	componentsMu.RLock()
	defer componentsMu.RUnlock()
	return len(components)
}
