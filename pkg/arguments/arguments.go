// Package arguments gathers the properties of the running
// instance from the configuration and the environment.
package arguments

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// AppMetadata :
// Describes some properties used to identify the current instance of
// the application. Most of these information are attached to the log
// records to distinguish among running instances of the application.
//
// The `PublicIPv4` corresponds to the IP address of the machine that
// is executing the application. The default value is "localhost".
//
// The `InstanceID` describes an identifier of the current instance.
// It is generated at runtime and changes upon restart.
//
// The `Environment` is a string describing the configuration used to
// start this application, typically `development` or `production`.
// It is derived from the name of the configuration file and defaults
// to "unknown".
//
// The `Port` specifies on which port the admin end points can be
// accessed. The default value is 3000.
type AppMetadata struct {
	PublicIPv4  string `json:"public_ipv4"`
	InstanceID  string `json:"instance_id"`
	Environment string `json:"environment"`
	Port        int    `json:"port"`
}

// Parse :
// Loads the configuration and produces the properties of the running
// instance. Values from the environment prefixed by `ENV_` override
// the ones of the file: `ENV_ADMIN_PORT` overrides `Admin.Port`.
//
// The `configFile` is either the name of a configuration file without
// extension, searched in the working directory and in `data/config`,
// or the path to a file. A missing name falls back to the defaults but
// a missing explicit path is an error. An empty name skips the file
// entirely.
//
// Returns the application's properties along with any error.
func Parse(configFile string) (AppMetadata, error) {
	viper.SetEnvPrefix("ENV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	metadata := AppMetadata{
		"localhost",
		uuid.New().String(),
		"unknown",
		3000,
	}

	if len(configFile) > 0 {
		name := configFile
		if len(filepath.Ext(configFile)) > 0 {
			viper.SetConfigFile(configFile)
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		} else {
			viper.SetConfigName(configFile)
			viper.AddConfigPath(".")
			viper.AddConfigPath("data/config")
		}

		err := viper.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return metadata, fmt.Errorf("could not parse input configuration \"%s\" (err: %w)", configFile, err)
		}

		metadata.Environment = name
	}

	if viper.IsSet("App.Environment") {
		metadata.Environment = viper.GetString("App.Environment")
	}
	if viper.IsSet("App.PublicIPv4") {
		metadata.PublicIPv4 = viper.GetString("App.PublicIPv4")
	}
	if viper.IsSet("Admin.Port") {
		metadata.Port = viper.GetInt("Admin.Port")
	}

	if metadata.Port <= 0 || metadata.Port > 65535 {
		return metadata, fmt.Errorf("invalid admin port %d", metadata.Port)
	}

	return metadata, nil
}
