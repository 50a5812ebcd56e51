package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/RoanBrand/StoichDashboard/stoich"
)

type Config struct {
	HTTPServerPort        string   `json:"http_server_port" toml:"http_server_port"`
	ElementsToDisplay     []string `json:"elements_to_display" toml:"elements_to_display"`
	NumberOfResults       int      `json:"number_of_results" toml:"number_of_results"`             // number of latest results returned to client
	ClientRefreshInterval int      `json:"client_refresh_interval" toml:"client_refresh_interval"` // period in (s) between when clients reload results

	DataType             string `json:"data_type" toml:"data_type"`                           // "mdb" or "xml"
	DataSource           string `json:"data_source" toml:"data_source"`                       // If xml: folder of xml files. If mdb: path to mdb file database.
	DebugMode            bool   `json:"debug_mode" toml:"debug_mode"`                         // print logs out to console instead of file when true
	RemoteMachineAddress string `json:"remote_machine_address" toml:"remote_machine_address"` // optional: mix results with remote spectro
	SpectroNumber        int    `json:"spectro_number" toml:"spectro_number"`

	Stoichiometry struct {
		MaxMultiplier  int      `json:"max_multiplier" toml:"max_multiplier"`
		Tolerance      float64  `json:"tolerance" toml:"tolerance"`
		DriftAllowance float64  `json:"drift_allowance" toml:"drift_allowance"`
		DisplayOrder   []string `json:"display_order" toml:"display_order"`
	} `json:"stoichiometry" toml:"stoichiometry"`

	ResultsDatabase struct {
		Address  string `json:"address" toml:"address"`
		User     string `json:"user" toml:"user"`
		Password string `json:"password" toml:"password"`
		Database string `json:"database" toml:"database"`
		Table    string `json:"table" toml:"table"`
	} `json:"results_database" toml:"results_database"`

	ElementOrder map[string]int `json:"-" toml:"-"` // internal use and just for displays

	displayOrder []stoich.Symbol
}

func defaults() Config {
	conf := Config{
		HTTPServerPort:        "80",
		ElementsToDisplay:     []string{"Al", "Ni", "Si", "Mg", "Ce", "Fe", "Cu", "Mn", "Zn", "Ti"},
		NumberOfResults:       20,
		ClientRefreshInterval: 10,
		DataType:              "mdb",
		SpectroNumber:         2,
	}
	conf.Stoichiometry.MaxMultiplier = stoich.DefaultMaxMultiplier
	conf.Stoichiometry.Tolerance = stoich.DefaultTolerance
	conf.Stoichiometry.DriftAllowance = stoich.DefaultDriftAllowance
	return conf
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	conf := defaults()
	if err := conf.finish(); err != nil {
		panic(err)
	}
	return &conf
}

// LoadConfig reads a JSON config file, or TOML if the file ends in .toml.
func LoadConfig(filePath string) (*Config, error) {
	conf := defaults()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		if _, err = toml.NewDecoder(f).Decode(&conf); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", filePath, err)
		}
	} else {
		if err = json.NewDecoder(f).Decode(&conf); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", filePath, err)
		}
	}

	if err = conf.finish(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return &conf, nil
}

// finish validates and fills the derived fields.
func (conf *Config) finish() error {
	conf.ElementOrder = make(map[string]int, len(conf.ElementsToDisplay))
	for i, el := range conf.ElementsToDisplay {
		conf.ElementOrder[el] = i
	}

	switch strings.ToLower(conf.DataType) {
	case "mdb", "xml":
		conf.DataType = strings.ToLower(conf.DataType)
	default:
		return fmt.Errorf("unknown data_type %q, expected mdb or xml", conf.DataType)
	}

	st := &conf.Stoichiometry
	if st.MaxMultiplier < 1 {
		return errors.New("stoichiometry.max_multiplier must be at least 1")
	}
	if st.Tolerance < 0 {
		return errors.New("stoichiometry.tolerance must not be negative")
	}
	if st.DriftAllowance < 0 {
		return errors.New("stoichiometry.drift_allowance must not be negative")
	}

	conf.displayOrder = nil
	if len(st.DisplayOrder) > 0 {
		order, err := stoich.ParseSymbols(strings.Join(st.DisplayOrder, ","))
		if err != nil {
			return fmt.Errorf("stoichiometry.display_order: %w", err)
		}
		conf.displayOrder = order
	}

	return nil
}

// Options returns the stoichiometry settings for stoich.Analyze.
func (conf *Config) Options() stoich.Options {
	return stoich.Options{
		Weights:        stoich.StandardWeights(),
		MaxMultiplier:  conf.Stoichiometry.MaxMultiplier,
		Tolerance:      conf.Stoichiometry.Tolerance,
		DriftAllowance: conf.Stoichiometry.DriftAllowance,
		DisplayOrder:   conf.displayOrder,
	}.Literal()
}
