package repository

import (
	"context"

	"github.com/google/uuid"
)

// LeadCounts aggregates the lead side of the distribution dashboard.
type LeadCounts struct {
	Total             int
	Assigned          int
	Unassigned        int
	CreatedLast7Days  int
	AssignedLast7Days int
}

// RealtorStats aggregates the supply side.
type RealtorStats struct {
	Verified           int
	ActiveVerified     int
	AtCapacity         int
	TotalAssignedLeads int
}

// RealtorLoad is a realtor's position on the utilization leaderboard.
type RealtorLoad struct {
	ID               uuid.UUID
	FullName         string
	CurrentLeadCount int
	Capacity         int
}

func (r *Repository) GetLeadCounts(ctx context.Context) (LeadCounts, error) {
	var counts LeadCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days'),
			COUNT(*) FILTER (WHERE assigned_at >= now() - interval '7 days')
		FROM leads
	`, statusAssigned, statusUnassigned).Scan(
		&counts.Total, &counts.Assigned, &counts.Unassigned,
		&counts.CreatedLast7Days, &counts.AssignedLast7Days,
	)
	if err != nil {
		return LeadCounts{}, err
	}
	return counts, nil
}

func (r *Repository) GetRealtorStats(ctx context.Context) (RealtorStats, error) {
	var stats RealtorStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE verification_status = $1),
			COUNT(*) FILTER (WHERE verification_status = $1 AND active = true),
			COUNT(*) FILTER (WHERE verification_status = $1 AND active = true AND current_lead_count >= capacity),
			COALESCE(SUM(current_lead_count), 0)
		FROM realtors
	`, statusVerified).Scan(
		&stats.Verified, &stats.ActiveVerified, &stats.AtCapacity, &stats.TotalAssignedLeads,
	)
	if err != nil {
		return RealtorStats{}, err
	}
	return stats, nil
}

// ListRealtorsByLoad returns active verified realtors ordered by current
// lead count. mostLoaded picks the direction: true for the top performers
// board, false for the underutilized board. Name breaks ties so pages are
// stable.
func (r *Repository) ListRealtorsByLoad(ctx context.Context, limit int, mostLoaded bool) ([]RealtorLoad, error) {
	order := `current_lead_count ASC`
	if mostLoaded {
		order = `current_lead_count DESC`
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, current_lead_count, capacity
		FROM realtors
		WHERE active = true AND verification_status = $1
		ORDER BY `+order+`, full_name ASC
		LIMIT $2
	`, statusVerified, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make([]RealtorLoad, 0, limit)
	for rows.Next() {
		var load RealtorLoad
		if err := rows.Scan(&load.ID, &load.FullName, &load.CurrentLeadCount, &load.Capacity); err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return loads, nil
}
