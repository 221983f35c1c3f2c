package service

import (
	"context"
	"fmt"

	"github.com/courtlytics/pbp/internal/adapters/mq/queue"
	"github.com/courtlytics/pbp/internal/domain/lineup"
	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/internal/domain/normalize"
	"github.com/courtlytics/pbp/internal/domain/shot"
	"github.com/courtlytics/pbp/internal/domain/stats"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// pipeline reduces one game job into a GameResult. It holds only stateless
// (or read-only after construction) components, so a single pipeline is shared
// by every worker; all per-game state lives in the processing context built
// inside Process.
type pipeline struct {
	normalizer *normalize.Normalizer
	classifier *shot.Classifier
}

func newPipeline(zones shot.Thresholds, mappings map[string]model.EventKind) *pipeline {
	normOpts := []normalize.Option{}
	if len(mappings) > 0 {
		normOpts = append(normOpts, normalize.WithKindMappings(mappings))
	}
	return &pipeline{
		normalizer: normalize.New(normOpts...),
		classifier: shot.New(shot.WithThresholds(zones)),
	}
}

// processingContext is the private per-game state: nothing in it is shared
// between games, so the reduction runs lock-free.
type processingContext struct {
	job     queue.Job
	report  *model.QualityReport
	tracker *lineup.Tracker
	agg     *stats.Aggregator
	teams   []string
	shots   []model.ShotEvent
}

// Process reduces one complete game. An error aborts this game only: the
// partially computed result is discarded and never reaches the sink.
func (p *pipeline) Process(ctx context.Context, job queue.Job) (*model.GameResult, error) {
	_ = ctx // the reduction is pure in-memory work; timeouts apply at I/O only

	pc := p.newContext(job)

	events, err := p.normalizer.Run(job.Raw, pc.report)
	if err != nil {
		return nil, fmt.Errorf("normalize game %s: %w", job.GameID, err)
	}

	for i := range events {
		ev := &events[i]
		pc.noteTeam(ev.TeamID)
		pc.tracker.Apply(ev)
		if err := pc.agg.Apply(ev, pc.courts()); err != nil {
			return nil, fmt.Errorf("aggregate game %s: %w", job.GameID, err)
		}
		if se, ok := p.classifier.FromEvent(ev); ok {
			pc.shots = append(pc.shots, se)
			metrics.RecordShotClassified()
		}
	}

	return &model.GameResult{
		GameID:    job.GameID,
		HomeTeam:  job.HomeTeam,
		AwayTeam:  job.AwayTeam,
		Events:    events,
		Snapshots: pc.agg.Rows(),
		Shots:     pc.shots,
		Lineups:   pc.tracker.Finish(),
		Quality:   pc.report,
		Entities:  pc.agg.Entities(),
	}, nil
}

// newContext assembles the per-game components from the job's roster
// knowledge.
func (p *pipeline) newContext(job queue.Job) *processingContext {
	report := model.NewQualityReport(job.GameID)

	trackerOpts := []lineup.Option{}
	for teamID, five := range job.Starters {
		trackerOpts = append(trackerOpts, lineup.WithStarters(teamID, five))
	}

	aggOpts := []stats.Option{}
	if len(job.Roster) > 0 {
		aggOpts = append(aggOpts, stats.WithRoster(job.Roster))
	}
	if job.HomeTeam != "" && job.AwayTeam != "" {
		aggOpts = append(aggOpts, stats.WithTeams(job.HomeTeam, job.AwayTeam))
	}

	pc := &processingContext{
		job:     job,
		report:  report,
		tracker: lineup.NewTracker(job.GameID, report, trackerOpts...),
		agg:     stats.New(job.GameID, report, aggOpts...),
	}
	pc.noteTeam(job.HomeTeam)
	pc.noteTeam(job.AwayTeam)
	for teamID := range job.Starters {
		pc.noteTeam(teamID)
	}
	for teamID := range job.Roster {
		pc.noteTeam(teamID)
	}
	return pc
}

// noteTeam records a team id the first time it appears.
func (pc *processingContext) noteTeam(teamID string) {
	if teamID == "" {
		return
	}
	for _, t := range pc.teams {
		if t == teamID {
			return
		}
	}
	pc.teams = append(pc.teams, teamID)
}

// courts reports both teams' current on-court answers for plus/minus
// crediting.
func (pc *processingContext) courts() map[string]stats.OnCourt {
	out := make(map[string]stats.OnCourt, len(pc.teams))
	for _, teamID := range pc.teams {
		players, known := pc.tracker.OnCourt(teamID)
		out[teamID] = stats.OnCourt{Players: players, Known: known}
	}
	return out
}
