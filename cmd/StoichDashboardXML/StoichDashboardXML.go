package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/xml_spectro"
	"github.com/kardianos/service"
)

func serviceConfig(configPath string) *service.Config {
	c := &service.Config{
		Name:        "StoichDashboardXML",
		DisplayName: "Stoichiometry Dashboard XML Publisher",
		Description: "Publishes the latest XML spectrometer samples and their stoichiometry for the dashboard",
	}
	if configPath != "" {
		c.Arguments = []string{"-config", configPath}
	}
	return c
}

func main() {
	svcFlag := flag.String("service", "", "Control the system service: "+strings.Join(service.ControlAction[:], ", "))
	confFlag := flag.String("config", "", "Config file, JSON or TOML (default config.json next to the executable)")
	flag.Parse()

	confPath := *confFlag
	if confPath != "" {
		abs, err := filepath.Abs(confPath) // services start in another working directory
		if err != nil {
			log.Fatal(err)
		}
		confPath = abs
	}

	s, err := service.New(xml_spectro.NewPublisher(confPath), serviceConfig(confPath))
	if err != nil {
		log.Fatal(err)
	}

	if *svcFlag != "" {
		if err = service.Control(s, *svcFlag); err != nil {
			log.Fatal("service", *svcFlag, "failed:", err)
		}
		log.Info("service control done", "action", *svcFlag)
		return
	}

	if err = s.Run(); err != nil {
		log.Error("service stopped", "err", err)
	}
}
