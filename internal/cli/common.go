// Package cli carries the pieces shared by the modulus command-line
// surface: version information, a small leveled logger, and the checker
// configuration file.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// Version information for the modulus binary.
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-06"
	CommitSHA = "unknown" // set by the release build
)

// VersionInfo contains version and build information.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns structured version information.
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion prints version information, as JSON when requested.
func PrintVersion(toolName string, jsonOutput bool) {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err == nil {
			fmt.Println(string(data))
			return
		}

		fmt.Fprintf(os.Stderr, "Error: marshaling version info: %v\n", err)
	}

	fmt.Printf("%s v%s\n", toolName, info.Version)
	fmt.Printf("Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Printf("Commit: %s\n", info.CommitSHA)
	}
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s/%s\n", info.Platform, info.Arch)
}

// ExitWithError prints an error message and exits with code 1.
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Logger gates the checker's progress output: Info shows with --verbose,
// Debug with the config file's debug setting, warnings and errors always.
type Logger struct {
	Verbose   bool
	DebugMode bool
	Out       io.Writer
}

// NewLogger creates a logger writing to stderr.
func NewLogger(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, DebugMode: debug, Out: os.Stderr}
}

func (l *Logger) logf(level, format string, args ...interface{}) {
	fmt.Fprintf(l.Out, "[%s] %s: %s\n", level, time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Info logs a progress message when verbose output is on.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		l.logf("INFO", format, args...)
	}
}

// Debug logs a debug message when debug mode is on.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.logf("DEBUG", format, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf("WARN", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf("ERROR", format, args...)
}

// HandleError reports a non-nil error and exits with code 1.
func HandleError(err error, logger *Logger) {
	if err == nil {
		return
	}

	if logger != nil {
		logger.Error("%v", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(1)
}

// Config is the checker configuration a modulus.json file carries. Flags
// take precedence: the file seeds only the settings the command line
// leaves at their defaults.
type Config struct {
	Verbose         bool   `json:"verbose"`
	Debug           bool   `json:"debug"`
	ModulePath      string `json:"module_path,omitempty"`
	WorkDir         string `json:"work_dir,omitempty"`
	TraceReduction  bool   `json:"trace_reduction,omitempty"`
	TraceMatching   bool   `json:"trace_matching,omitempty"`
	TraceConversion bool   `json:"trace_conversion,omitempty"`
}

// LoadConfig loads a configuration file. An empty path or a missing file
// yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		ModulePath: "main",
		WorkDir:    ".",
	}

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to a file.
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
