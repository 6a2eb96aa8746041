package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnableDBTracing instruments a GORM database handle with OpenTelemetry
// query spans. Queries appear as child spans of the surrounding request
// or service span.
func EnableDBTracing(db *gorm.DB, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("failed to install gorm tracing plugin: %w", err)
	}

	logger.Info("database query tracing enabled")
	return nil
}
