package main

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/http"
	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/mdb_spectro"
	"github.com/RoanBrand/StoichDashboard/sample"
	"github.com/RoanBrand/StoichDashboard/xml_spectro/fileparser"
)

const (
	cacheMaxAge = 5 * time.Second

	remoteSpectro = 3 // samples merged from the XML publisher
)

type resultCache struct {
	sync.RWMutex
	age    time.Time
	result []byte
}

func (c *resultCache) fresh() ([]byte, bool) {
	if time.Since(c.age) < cacheMaxAge {
		return c.result, true
	}
	return nil, false
}

// never returns an error unless encoding fails.
func (p *app) getResults() ([]byte, error) {
	// check if cache recent enough
	p.cache.RLock()
	if res, ok := p.cache.fresh(); ok {
		p.cache.RUnlock()
		return res, nil
	}

	// is old, get write lock and perform request
	p.cache.RUnlock()
	p.cache.Lock()
	defer p.cache.Unlock()

	// need to check if result still old, otherwise return new result
	if res, ok := p.cache.fresh(); ok {
		return res, nil
	}

	start := time.Now()
	var remoteRes []*sample.Record
	var remoteDone chan struct{}

	// get results from remote xml spectro 3 service
	if p.conf.RemoteMachineAddress != "" {
		remoteDone = make(chan struct{})
		go func() {
			defer close(remoteDone)
			remoteRes = getRemoteResults(p.conf.RemoteMachineAddress)
		}()
	}

	local := getLocalResults(p.conf)

	if remoteDone != nil {
		<-remoteDone
	}

	allResults := mergeResults(p.conf, local, remoteRes)

	// go through all results, insert all into results table that are newer than last inserted
	if p.rdb != nil {
		go func(res []*sample.Record) {
			if err := p.rdb.InsertNewResults(res); err != nil {
				log.Error("inserting new records into results database", "err", err)
			}
		}(allResults)
	}

	resJson, err := json.Marshal(allResults)
	if err != nil {
		return nil, err
	}

	p.cache.result = resJson
	p.cache.age = time.Now()
	log.Debug("results refreshed", "count", len(allResults), log.Since(start))
	return resJson, nil
}

func getRemoteResults(addr string) []*sample.Record {
	resp, err := http.GetRemoteResults(addr)
	if err != nil {
		log.Println("Error retrieving remote results from", addr, ":", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Println("Error retrieving remote results from", addr, ":", resp.Status)
		return nil
	}

	var res []*sample.Record
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Println("Error decoding remote results from", addr, ":", err)
		return nil
	}
	return res
}

// getLocalResults reads the local spectro. Errors are logged, not returned,
// so one unreachable spectro does not blank the dashboard.
func getLocalResults(conf *config.Config) []*sample.Record {
	var recs []*sample.Record

	switch conf.DataType {
	case "xml":
		res, err := fileparser.GetResults(conf.DataSource, conf.NumberOfResults)
		if err != nil {
			log.Println("Error retrieving local results from", conf.DataSource, ":", err)
			return nil
		}
		for i := range res {
			recs = append(recs, res[i].Sample(conf.SpectroNumber))
		}
	default:
		res, err := mdb_spectro.GetResults(conf.DataSource, conf.NumberOfResults)
		if err != nil {
			log.Println("Error retrieving local results from", conf.DataSource, ":", err)
			return nil
		}
		for _, r := range res {
			r.Spectro = conf.SpectroNumber
		}
		recs = res
	}

	if len(recs) == 0 {
		log.Warn("0 results found", "source", conf.DataSource)
	}
	return recs
}

// mergeResults analyzes local and remote samples together, newest first,
// limited to the configured number of results. Remote samples keep their
// analysis ID but are solved again with the local settings.
func mergeResults(conf *config.Config, local []*sample.Record, remote []*sample.Record) []*sample.Record {
	all := make([]*sample.Record, 0, len(local)+len(remote))
	all = append(all, local...)
	for _, r := range remote {
		r.Spectro = remoteSpectro
		all = append(all, r)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TimeStamp.After(all[j].TimeStamp)
	})

	// limit results after merge
	if len(all) > conf.NumberOfResults {
		all = all[:conf.NumberOfResults]
	}

	opts := conf.Options()
	for _, r := range all {
		r.Arrange(conf.ElementOrder)
		r.Analyze(opts)
		if r.Stoichiometry.Error != "" {
			log.Debug("no stoichiometry", "sample", r.SampleName, "spectro", r.Spectro, "err", r.Stoichiometry.Error)
		}
	}
	return all
}

func getLastResultFurnaces(conf *config.Config, furnaces []string, tSamplesOnly bool) (interface{}, error) {
	// get latest results from remote xml spectro 3 service
	var remoteRes []sample.Record
	var remoteDone chan struct{}
	if conf.RemoteMachineAddress != "" {
		remoteDone = make(chan struct{})
		go func() {
			defer close(remoteDone)

			resp, err := http.GetRemoteLatestFurnacesResults(conf.RemoteMachineAddress, furnaces)
			if err != nil {
				log.Println("Error retrieving remote results from", conf.RemoteMachineAddress, ":", err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				log.Println("Error retrieving remote results from", conf.RemoteMachineAddress, ":", resp.Status)
				return
			}

			if err = json.NewDecoder(resp.Body).Decode(&remoteRes); err != nil {
				log.Println("Error decoding remote results from", conf.RemoteMachineAddress, ":", err)
			}
		}()
	}

	var lastFurnaceResults []sample.Record
	var err error
	if conf.DataType == "xml" {
		var res []fileparser.Record
		res, err = fileparser.GetLastFurnaceResults(conf.DataSource, furnaces, tSamplesOnly)
		for i := range res {
			lastFurnaceResults = append(lastFurnaceResults, *res[i].Sample(conf.SpectroNumber))
		}
	} else {
		lastFurnaceResults, err = mdb_spectro.GetLastFurnaceResults(conf.DataSource, furnaces, tSamplesOnly)
	}
	if remoteDone != nil {
		<-remoteDone
	}
	if err != nil {
		return nil, err
	}

	return mergeLastFurnaceResults(lastFurnaceResults, remoteRes), nil
}

// mergeLastFurnaceResults replaces a furnace's local sample with the remote one if that is newer.
func mergeLastFurnaceResults(local []sample.Record, remote []sample.Record) []sample.Record {
	for i, lfr := range local {
		for _, remlfr := range remote {
			if remlfr.Furnace != lfr.Furnace {
				continue
			}

			if remlfr.TimeStamp.Before(lfr.TimeStamp) {
				continue
			}

			local[i] = remlfr
			local[i].Spectro = remoteSpectro
			break
		}
	}
	return local
}
