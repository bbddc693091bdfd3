// Package otlp ships journal records to an OpenTelemetry collector
// using the OTLP logs service over gRPC.
package otlp

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/spf13/viper"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"grafik/pkg/journal"
	"grafik/pkg/logger"
)

// scopeName identifies this package as the instrumentation scope.
const scopeName = "grafik/pkg/logger"

// ErrNoEndpoint indicates that no collector is configured.
var ErrNoEndpoint = fmt.Errorf("no OTLP endpoint configured")

// Config :
// Describes how to reach the collector.
//
// The `Endpoint` is the `host:port` of the collector.
//
// The `Insecure` disables TLS, which is common for a collector
// running as a side car.
type Config struct {
	Endpoint string
	Insecure bool
}

// ParseConfiguration reads the `Otlp.*` keys of the configuration.
func ParseConfiguration() Config {
	return Config{
		Endpoint: viper.GetString("Otlp.Endpoint"),
		Insecure: viper.GetBool("Otlp.Insecure"),
	}
}

// Dial :
// Opens the client connection to the collector. The connection
// is established lazily by gRPC.
func Dial(config Config) (*grpc.ClientConn, error) {
	if len(config.Endpoint) == 0 {
		return nil, ErrNoEndpoint
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if config.Insecure {
		creds = insecure.NewCredentials()
	}

	return grpc.Dial(config.Endpoint, grpc.WithTransportCredentials(creds))
}

// SeverityNumber :
// Converts a severity into the OTLP severity number, using the
// first value of each OTLP range. Critical maps to the fatal
// range which is the most important one.
func SeverityNumber(s logger.Severity) logspb.SeverityNumber {
	switch s {
	case logger.TraceLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_TRACE
	case logger.DebugLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_DEBUG
	case logger.InfoLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_INFO
	case logger.WarningLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_WARN
	case logger.ErrorLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_ERROR
	case logger.CriticalLevel:
		return logspb.SeverityNumber_SEVERITY_NUMBER_FATAL
	}

	return logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED
}

// Exporter :
// Implementation of the journal store sending each batch of
// records in a single export request.
//
// The `client` is the stub of the OTLP logs service.
//
// The `log` reports the records rejected by the collector.
type Exporter struct {
	client collogspb.LogsServiceClient
	log    logger.Logger
}

// NewExporter :
// Creates an exporter using the input connection, which can
// be shared with other gRPC clients.
func NewExporter(conn grpc.ClientConnInterface, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.Discard
	}

	return &Exporter{
		client: collogspb.NewLogsServiceClient(conn),
		log:    log,
	}
}

func stringValue(s string) *commonpb.AnyValue {
	return &commonpb.AnyValue{
		Value: &commonpb.AnyValue_StringValue{StringValue: s},
	}
}

func attribute(key string, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: stringValue(value),
	}
}

// resourceKey identifies the producer of a record.
type resourceKey struct {
	app      string
	instance string
}

// buildRequest :
// Groups the records per producing application and converts them
// into the OTLP messages. The order of the records is preserved
// within each group.
func buildRequest(records []journal.Record) *collogspb.ExportLogsServiceRequest {
	req := &collogspb.ExportLogsServiceRequest{}
	groups := make(map[resourceKey]*logspb.ScopeLogs)

	for _, r := range records {
		key := resourceKey{r.AppName, r.InstanceID}

		scope, ok := groups[key]
		if !ok {
			scope = &logspb.ScopeLogs{
				Scope: &commonpb.InstrumentationScope{Name: scopeName},
			}
			groups[key] = scope

			req.ResourceLogs = append(req.ResourceLogs, &logspb.ResourceLogs{
				Resource: &resourcepb.Resource{
					Attributes: []*commonpb.KeyValue{
						attribute("service.name", r.AppName),
						attribute("service.instance.id", r.InstanceID),
					},
				},
				ScopeLogs: []*logspb.ScopeLogs{scope},
			})
		}

		stamp := uint64(r.Time.UnixNano())
		scope.LogRecords = append(scope.LogRecords, &logspb.LogRecord{
			TimeUnixNano:         stamp,
			ObservedTimeUnixNano: stamp,
			SeverityNumber:       SeverityNumber(r.Level),
			SeverityText:         r.Level.Name(),
			Body:                 stringValue(r.Message),
		})
	}

	return req
}

// Store :
// Exports the batch of records. Records rejected by the collector
// are reported but not retried: the collector considers them as
// invalid so sending them again would not help.
func (e *Exporter) Store(ctx context.Context, records []journal.Record) error {
	if len(records) == 0 {
		return nil
	}

	resp, err := e.client.Export(ctx, buildRequest(records))
	if err != nil {
		return fmt.Errorf("could not export %d record(s) (err: %w)", len(records), err)
	}

	if partial := resp.GetPartialSuccess(); partial != nil && partial.GetRejectedLogRecords() > 0 {
		e.log.Warn("Collector rejected %d record(s) out of %d (err: %s)", partial.GetRejectedLogRecords(), len(records), partial.GetErrorMessage())
	}

	return nil
}
