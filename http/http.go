package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/google/uuid"
)

type ResultFunc func() ([]byte, error)
type FurnaceResultFunc func(furnaces []string, tSamplesOnly bool) (interface{}, error)

var handler http.Handler

var remoteClient = &http.Client{Timeout: 10 * time.Second}

func SetupServer(staticFilesPath string, resultGetter ResultFunc, furnaceResultGetter FurnaceResultFunc, opts stoich.Options) {
	handler = NewHandler(staticFilesPath, resultGetter, furnaceResultGetter, opts)
}

func StartServer(port string) error {
	if handler == nil {
		return errors.New("http server not set up")
	}
	log.Info("starting http server", "port", port)
	return http.ListenAndServe(":"+port, handler)
}

// NewHandler serves static files on "/" and the JSON endpoints.
// Empty staticFilesPath or nil getters leave those endpoints out.
func NewHandler(staticFilesPath string, resultGetter ResultFunc, furnaceResultGetter FurnaceResultFunc, opts stoich.Options) http.Handler {
	mux := http.NewServeMux()
	if staticFilesPath != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticFilesPath)))
	}
	if resultGetter != nil {
		mux.HandleFunc("/results", resultEndpoint(resultGetter))
	}
	if furnaceResultGetter != nil {
		mux.HandleFunc("/lastfurnaceresults", lastFurnaceResult(furnaceResultGetter))
	}
	mux.HandleFunc("/stoichiometry", stoichiometryEndpoint(opts))
	return mux
}

func resultEndpoint(resultFunc ResultFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := resultFunc()
		if err != nil {
			errMsg := "Error querying results: " + err.Error()
			log.Println(errMsg)
			http.Error(w, errMsg, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(results)
	}
}

func lastFurnaceResult(furnaceResultFunc FurnaceResultFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		results, err := furnaceResultFunc(q["f"], q.Get("t") == "true")
		if err != nil {
			errMsg := "Error querying results: " + err.Error()
			log.Println(errMsg)
			http.Error(w, errMsg, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

type stoichiometryRequest struct {
	Composition   map[string]float64 `json:"composition"`
	MaxMultiplier int                `json:"max_multiplier"`
	Tolerance     *float64           `json:"tolerance"` // 0 tries every multiplier, absent uses the server's
	DisplayOrder  []string           `json:"display_order"`
}

type stoichiometryResponse struct {
	AnalysisID string   `json:"analysis_id"`
	Ignored    []string `json:"ignored,omitempty"`
	*stoich.Analysis
}

func stoichiometryEndpoint(defaults stoich.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stoichiometryRequest
		var err error

		switch r.Method {
		case http.MethodGet:
			req, err = requestFromQuery(r.URL.Query())
		case http.MethodPost:
			err = json.NewDecoder(r.Body).Decode(&req)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}

		opts := defaults
		if req.MaxMultiplier != 0 {
			opts.MaxMultiplier = req.MaxMultiplier
		}
		if req.Tolerance != nil {
			if *req.Tolerance < 0 {
				http.Error(w, "tolerance must not be negative", http.StatusBadRequest)
				return
			}
			opts.Tolerance = *req.Tolerance
			if opts.Tolerance == 0 {
				opts.Tolerance = stoich.NoEarlyStop
			}
		}
		if len(req.DisplayOrder) > 0 {
			if opts.DisplayOrder, err = stoich.ParseSymbols(strings.Join(req.DisplayOrder, ",")); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		comp, ignored, err := stoich.CompositionFromMap(req.Composition)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := stoich.Analyze(comp, opts)
		if err != nil {
			http.Error(w, err.Error(), errorStatus(err))
			return
		}

		resp := stoichiometryResponse{
			AnalysisID: uuid.NewString(),
			Ignored:    ignored,
			Analysis:   a,
		}
		log.Debug("stoichiometry", "id", resp.AnalysisID, "formula", a.FormulaString, "multiplier", a.Multiplier)
		writeJSON(w, http.StatusOK, resp)
	}
}

// requestFromQuery reads e.g. ?Al=71.67&Ce=28.33&max_mult=12&tol=0.02&order=Ce,Al
func requestFromQuery(q url.Values) (stoichiometryRequest, error) {
	req := stoichiometryRequest{Composition: make(map[string]float64)}
	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]

		var err error
		switch key {
		case "max_mult":
			req.MaxMultiplier, err = strconv.Atoi(v)
		case "tol":
			var tol float64
			tol, err = strconv.ParseFloat(v, 64)
			req.Tolerance = &tol
		case "order":
			req.DisplayOrder = strings.Split(v, ",")
		default:
			req.Composition[key], err = strconv.ParseFloat(v, 64)
		}
		if err != nil {
			return req, fmt.Errorf("invalid value for %s: %q", key, v)
		}
	}
	return req, nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, stoich.ErrLookup), errors.Is(err, stoich.ErrNegative):
		return http.StatusBadRequest
	case errors.Is(err, stoich.ErrDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func remoteURL(remoteAddress, path string) string {
	if !strings.HasPrefix(remoteAddress, "http://") && !strings.HasPrefix(remoteAddress, "https://") {
		remoteAddress = "http://" + remoteAddress
	}
	if !strings.HasSuffix(remoteAddress, path) {
		remoteAddress = strings.TrimSuffix(remoteAddress, "/") + path
	}
	return remoteAddress
}

func GetRemoteResults(remoteAddress string) (*http.Response, error) {
	return remoteClient.Get(remoteURL(remoteAddress, "/results"))
}

func GetRemoteLatestFurnacesResults(remoteAddress string, furnaces []string) (*http.Response, error) {
	q := url.Values{"f": furnaces}
	return remoteClient.Get(remoteURL(remoteAddress, "/lastfurnaceresults") + "?" + q.Encode())
}
