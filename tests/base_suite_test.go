package tests

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExternalDependenciesSuite loads SETTINGS_FILE (default $HOME/.env) before
// live tests that talk to real services.
type ExternalDependenciesSuite struct {
	suite.Suite
	settingsFile string
}

func (s *ExternalDependenciesSuite) SetupSuite() {
	settingsFromEnv := strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	settingsFile := settingsFromEnv
	if settingsFile == "" {
		homeDir, err := os.UserHomeDir()
		require.NoError(s.T(), err)
		settingsFile = filepath.Join(homeDir, ".env")
	}

	s.settingsFile = settingsFile

	_, err := os.Stat(settingsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && settingsFromEnv == "" {
			return
		}
		require.NoError(s.T(), err)
		return
	}

	err = godotenv.Overload(settingsFile)
	require.NoError(s.T(), err)
}

func (s *ExternalDependenciesSuite) SettingsFile() string {
	return s.settingsFile
}

// RequireFlag skips the suite unless the named environment flag is true.
func (s *ExternalDependenciesSuite) RequireFlag(name string) {
	if !flagSet(name) {
		s.T().Skipf("%s is not true; skipping live test", name)
	}
}

func flagSet(name string) bool {
	run, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	return err == nil && run
}

// Config loads the application configuration from the process environment.
func (s *ExternalDependenciesSuite) Config() config.Config {
	cfg, err := config.LoadWith(os.LookupEnv)
	require.NoError(s.T(), err)
	return cfg
}
