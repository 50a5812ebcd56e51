package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/http"
	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/resultdb"
	"github.com/kardianos/service"
)

type app struct {
	configPath string
	conf       *config.Config
	rdb  *resultdb.ResultDB

	cache resultCache
}

func (p *app) Start(s service.Service) error {
	go p.run()
	return nil
}

func (p *app) run() {
	execPath, err := os.Executable()
	if err != nil {
		panic(err)
	}

	if p.configPath == "" {
		p.configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}
	conf, err := config.LoadConfig(p.configPath)
	if err != nil {
		panic(err)
	}

	p.conf = conf

	log.Setup(filepath.Join(filepath.Dir(execPath), "stoichdashboard.log"), conf.DebugMode)
	http.SetupServer(
		filepath.Join(filepath.Dir(execPath), "static"),
		p.getResults,
		func(furnaces []string, tSamplesOnly bool) (interface{}, error) {
			return getLastResultFurnaces(conf, furnaces, tSamplesOnly)
		},
		conf.Options(),
	)

	if conf.ResultsDatabase.Address != "" {
		p.rdb = resultdb.Setup(conf)
	}

	if err = http.StartServer(conf.HTTPServerPort); err != nil {
		panic(err)
	}
}

func (p *app) Stop(s service.Service) error {
	if p.rdb != nil {
		return p.rdb.Stop()
	}
	return nil
}

func main() {
	svcFlag := flag.String("service", "", "Control the system service.")
	confFlag := flag.String("config", "", "Config file, JSON or TOML (default config.json next to the executable)")
	flag.Parse()

	svcConfig := &service.Config{
		Name:        "StoichDashboard",
		DisplayName: "Stoichiometry Dashboard App",
		Description: "Provides webpage that displays latest spectrometer results and their stoichiometry",
	}

	prg := &app{}
	if *confFlag != "" {
		abs, err := filepath.Abs(*confFlag)
		if err != nil {
			log.Fatal(err)
		}
		prg.configPath = abs
		svcConfig.Arguments = []string{"-config", abs}
	}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		log.Fatal(err)
	}

	if *svcFlag != "" {
		err = service.Control(s, *svcFlag)
		if err != nil {
			log.Printf("Valid actions: %q\n", service.ControlAction)
			log.Fatal(err)
		}
		return
	}

	logger, err := s.Logger(nil)
	if err != nil {
		log.Fatal(err)
	}
	err = s.Run()
	if err != nil {
		logger.Error(err)
	}
}
