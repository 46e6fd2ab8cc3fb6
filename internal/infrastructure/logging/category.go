package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	KeyCategory    = "Category"
	KeySubCategory = "SubCategory"
)

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Postgres        Category = "Postgres"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	Realtime        Category = "Realtime"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Postgres
	Migration SubCategory = "Migration"
	Select    SubCategory = "Select"
	Insert    SubCategory = "Insert"
	Update    SubCategory = "Update"
	Delete    SubCategory = "Delete"

	// Realtime
	Api       SubCategory = "Api"
	Handshake SubCategory = "Handshake"
	Publish   SubCategory = "Publish"
	Subscribe SubCategory = "Subscribe"
	Reconnect SubCategory = "Reconnect"
)

const (
	AppName      ExtraKey = "AppName"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestID    ExtraKey = "RequestId"
	ErrorMessage ExtraKey = "ErrorMessage"
)
