package server

import (
	"encoding/json"
	"net/http"

	"github.com/BaSui01/aliaseditor/aliasplugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusSource reports plugin state for the status endpoints.
type StatusSource interface {
	Status() aliasplugin.Status
}

// NewHandler 构建宿主的 HTTP 路由：
//
//	/health     插件状态与实例数量
//	/instances  实例明细
//	/metrics    Prometheus 指标（gatherer 为 nil 时不注册）
func NewHandler(src StatusSource, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "status_handler"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		st := src.Status()
		code := http.StatusOK
		if st.State != "loaded" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{
			"status":     st.State,
			"session_id": st.SessionID,
			"version":    st.Version,
			"instances":  len(st.Instances),
		}, logger)
	})
	mux.HandleFunc("GET /instances", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, src.Status().Instances, logger)
	})
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response failed", zap.Error(err))
	}
}
