package xml_spectro

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/http"
	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/sample"
	"github.com/RoanBrand/StoichDashboard/xml_spectro/fileparser"
	"github.com/kardianos/service"
)

// Publisher serves the XML spectro's latest samples, with their
// stoichiometry, for a dashboard on another machine to merge.
type Publisher struct {
	configPath string // empty means config.json next to the executable
	conf       *config.Config
}

func NewPublisher(configPath string) *Publisher {
	return &Publisher{configPath: configPath}
}

func (p *Publisher) Start(s service.Service) error {
	go p.run()
	return nil
}

func (p *Publisher) Stop(s service.Service) error {
	return nil
}

func (p *Publisher) run() {
	execPath, err := os.Executable()
	if err != nil {
		panic(err)
	}
	dir := filepath.Dir(execPath)

	confPath := p.configPath
	if confPath == "" {
		confPath = filepath.Join(dir, "config.json")
	}
	if p.conf, err = config.LoadConfig(confPath); err != nil {
		panic(err)
	}

	log.Setup(filepath.Join(dir, "stoichdashboard_xml.log"), p.conf.DebugMode)
	log.Info("publishing XML spectro samples", "folder", p.conf.DataSource, "spectro", p.conf.SpectroNumber)

	http.SetupServer(filepath.Join(dir, "static"), p.results, p.lastFurnaceResults, p.conf.Options())
	if err = http.StartServer(p.conf.HTTPServerPort); err != nil {
		panic(err)
	}
}

// analyze converts parsed files into dashboard samples and works out their
// stoichiometry. Samples that cannot be solved carry the reason instead.
func (p *Publisher) analyze(recs []fileparser.Record) []*sample.Record {
	opts := p.conf.Options()
	samples := make([]*sample.Record, 0, len(recs))
	for i := range recs {
		s := recs[i].Sample(p.conf.SpectroNumber)
		s.Arrange(p.conf.ElementOrder)
		s.Analyze(opts)
		if s.Stoichiometry.Error != "" {
			log.Debug("no stoichiometry", "sample", s.SampleName, "err", s.Stoichiometry.Error)
		}
		samples = append(samples, s)
	}
	return samples
}

func (p *Publisher) results() ([]byte, error) {
	start := time.Now()
	res, err := fileparser.GetResults(p.conf.DataSource, p.conf.NumberOfResults)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		log.Warn("0 results found", "folder", p.conf.DataSource)
	}

	samples := p.analyze(res)
	log.Debug("xml results", "count", len(samples), log.Since(start))
	return json.Marshal(samples)
}

func (p *Publisher) lastFurnaceResults(furnaces []string, tSamplesOnly bool) (interface{}, error) {
	res, err := fileparser.GetLastFurnaceResults(p.conf.DataSource, furnaces, tSamplesOnly)
	if err != nil {
		return nil, err
	}
	return p.analyze(res), nil
}
