package health

// Состояния базы данных в ответе
const (
	DatabaseOK          = "ok"
	DatabaseUnavailable = "unavailable"
	DatabaseDisabled    = "disabled"
)

type Input struct{}

// Output код ответа зависит от состояния базы: 200 или 503
type Output struct {
	Status int
	Body   Response
}

type Response struct {
	Status     string `json:"status" example:"OK" enum:"OK,DEGRADED" doc:"Overall service status"`
	Database   string `json:"database" example:"ok" enum:"ok,unavailable,disabled" doc:"Result of the database ping"`
	ServerTime int64  `json:"serverTime" example:"1700000000000" doc:"Server clock in unix milliseconds"`
}
