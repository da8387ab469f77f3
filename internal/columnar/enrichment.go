package columnar

import (
	"context"
	"time"
)

// DeviceMetadata mirrors get_device_metadata's result shape.
type DeviceMetadata struct {
	DeviceType  string
	Vendor      string
	Model       string
	Location    string
	Criticality string
}

// FailureRates mirrors get_historical_failure_rates's 24h aggregate.
type FailureRates struct {
	TotalAnomalies24h int64
	CriticalCount24h  int64
	HighCount24h      int64
	MediumCount24h    int64
	LowCount24h       int64
	AvgScore24h       float64
	FailureRatePerHr  float64
}

// SimilarAnomaly mirrors one row of get_similar_anomalies.
type SimilarAnomaly struct {
	Timestamp  time.Time
	Severity   string
	Score      float64
	Detector   string
	Service    string
	MetricName string
	MetricVal  float64
}

// RecentIncident mirrors one row of get_recent_incidents.
type RecentIncident struct {
	IncidentID   string
	IncidentType string
	Severity     string
	Status       string
	CreatedAt    time.Time
}

// GetDeviceMetadata looks up a device's metadata row. Every error is
// swallowed and reported as (nil, nil) — enrichment must never block
// the pipeline on a lookup failure (ported from
// clickhouse_queries.py's "fail gracefully" comment).
func (c *Client) GetDeviceMetadata(ctx context.Context, shipID, deviceID string) (*DeviceMetadata, error) {
	if deviceID == "" {
		return nil, nil
	}
	ctx, cleanup := c.queryCtx(ctx, "get_device_metadata")
	defer cleanup()

	row := c.conn.QueryRow(ctx, `
		SELECT device_type, vendor, model, location, criticality
		FROM devices
		WHERE ship_id = ? AND device_id = ?
		LIMIT 1
	`, shipID, deviceID)

	var m DeviceMetadata
	if err := row.Scan(&m.DeviceType, &m.Vendor, &m.Model, &m.Location, &m.Criticality); err != nil {
		if c.logger != nil {
			c.logger.Debug("device metadata lookup missed", "ship_id", shipID, "device_id", deviceID, "error", err)
		}
		return nil, nil
	}
	return &m, nil
}

// GetHistoricalFailureRates aggregates the last 24h of anomalies for
// (shipID, domain). Returns a zeroed struct on any query error, matching
// get_historical_failure_rates's empty-stats fallback.
func (c *Client) GetHistoricalFailureRates(ctx context.Context, shipID, domain string) FailureRates {
	ctx, cleanup := c.queryCtx(ctx, "get_historical_failure_rates")
	defer cleanup()

	row := c.conn.QueryRow(ctx, `
		SELECT
			count() AS total,
			countIf(severity = 'critical') AS critical,
			countIf(severity = 'high') AS high,
			countIf(severity = 'medium') AS medium,
			countIf(severity = 'low') AS low,
			avg(score) AS avg_score
		FROM anomalies
		WHERE ship_id = ? AND domain = ? AND ts >= now() - INTERVAL 24 HOUR
	`, shipID, domain)

	var r FailureRates
	var avg *float64
	if err := row.Scan(&r.TotalAnomalies24h, &r.CriticalCount24h, &r.HighCount24h, &r.MediumCount24h, &r.LowCount24h, &avg); err != nil {
		if c.logger != nil {
			c.logger.Debug("historical failure rate query failed", "error", err)
		}
		return FailureRates{}
	}
	if avg != nil {
		r.AvgScore24h = *avg
	}
	r.FailureRatePerHr = float64(r.TotalAnomalies24h) / 24.0
	return r
}

// GetSimilarAnomalies fetches up to 10 similar anomalies from the last
// 7 days, optionally narrowed by metricName/service, ported from
// get_similar_anomalies's dynamic WHERE clause.
func (c *Client) GetSimilarAnomalies(ctx context.Context, shipID, domain, anomalyType, metricName, service string) []SimilarAnomaly {
	ctx, cleanup := c.queryCtx(ctx, "get_similar_anomalies")
	defer cleanup()

	query := `
		SELECT ts, severity, score, detector, service, metric_name, metric_value
		FROM anomalies
		WHERE ship_id = ? AND domain = ? AND anomaly_type = ? AND ts >= now() - INTERVAL 7 DAY`
	args := []any{shipID, domain, anomalyType}
	if metricName != "" {
		query += " AND metric_name = ?"
		args = append(args, metricName)
	}
	if service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}
	query += " ORDER BY ts DESC LIMIT 10"

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("similar anomalies query failed", "error", err)
		}
		return nil
	}
	defer rows.Close()

	var out []SimilarAnomaly
	for rows.Next() {
		var a SimilarAnomaly
		var metricVal *float64
		if err := rows.Scan(&a.Timestamp, &a.Severity, &a.Score, &a.Detector, &a.Service, &a.MetricName, &metricVal); err != nil {
			continue
		}
		if metricVal != nil {
			a.MetricVal = *metricVal
		}
		out = append(out, a)
	}
	return out
}

// GetRecentIncidents fetches up to limit incidents of type domain for
// shipID created in the last 24h, ported from get_recent_incidents.
func (c *Client) GetRecentIncidents(ctx context.Context, shipID, domain string, limit int) []RecentIncident {
	if limit <= 0 {
		limit = 5
	}
	ctx, cleanup := c.queryCtx(ctx, "get_recent_incidents")
	defer cleanup()

	rows, err := c.conn.Query(ctx, `
		SELECT incident_id, incident_type, severity, status, created_at
		FROM incidents
		WHERE ship_id = ? AND incident_type = ? AND created_at >= now() - INTERVAL 24 HOUR
		ORDER BY created_at DESC
		LIMIT ?
	`, shipID, domain, limit)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("recent incidents query failed", "error", err)
		}
		return nil
	}
	defer rows.Close()

	var out []RecentIncident
	for rows.Next() {
		var r RecentIncident
		if err := rows.Scan(&r.IncidentID, &r.IncidentType, &r.Severity, &r.Status, &r.CreatedAt); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
