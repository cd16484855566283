package services

import (
	"context"
	"errors"
	"time"

	"github.com/ludapartners/luda-mind/internal/core/audit"
	"github.com/ludapartners/luda-mind/internal/core/executor"
	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/synthesizer"
	"github.com/ludapartners/luda-mind/internal/core/templates"
	"github.com/ludapartners/luda-mind/internal/modules/mind/models"
	"github.com/ludapartners/luda-mind/internal/shared/logger"
)

const (
	templateConfidence    = 0.95
	synthesizedConfidence = 0.7
)

// AskService orchestrates one question end to end: classify, resolve, render
// or synthesize, execute, format. Each call is stateless; all held
// dependencies are read-only or safe for concurrent use.
type AskService struct {
	classifier    *intent.Classifier
	templates     *templates.Engine
	synth         *synthesizer.Synthesizer
	mongoExec     executor.Executor
	mysqlExec     executor.Executor
	audit         *audit.Service
	mongoDatabase string
	mysqlDatabase string
	now           func() time.Time
}

func NewAskService(
	classifier *intent.Classifier,
	engine *templates.Engine,
	synth *synthesizer.Synthesizer,
	mongoExec executor.Executor,
	mysqlExec executor.Executor,
	auditSvc *audit.Service,
	mongoDatabase string,
) *AskService {
	return &AskService{
		classifier:    classifier,
		templates:     engine,
		synth:         synth,
		mongoExec:     mongoExec,
		mysqlExec:     mysqlExec,
		audit:         auditSvc,
		mongoDatabase: mongoDatabase,
		mysqlDatabase: "analytics",
		now:           time.Now,
	}
}

// WithClock overrides the time anchor, for tests.
func (s *AskService) WithClock(now func() time.Time) *AskService {
	s.now = now
	return s
}

// Ask answers one question. Every failure path still returns a
// natural-language answer; success=false is the only structural failure
// signal the UI needs.
func (s *AskService) Ask(ctx context.Context, req *models.AskRequest) *models.AskResponse {
	started := s.now()
	mode := intent.Mode(req.Mode)
	if mode == "" {
		mode = intent.ModeConversational
	}

	qi, err := s.classifier.Classify(ctx, req.Question, mode, started)
	if err != nil {
		return s.fail(ctx, req, started, nil, nil, err)
	}

	var plan *pipeline.Plan
	var rewrites []string
	if qi.MatchedTemplate != "" {
		plan, err = s.templates.Render(ctx, qi)
	} else {
		plan, rewrites, err = s.synth.Synthesize(ctx, qi)
	}
	if err != nil {
		return s.fail(ctx, req, started, qi, nil, err)
	}

	for _, rewrite := range rewrites {
		logger.LogWarn("pipeline rewrite applied", map[string]interface{}{
			"question": req.Question,
			"rewrite":  rewrite,
		})
	}

	rows, err := s.executorFor(plan).Execute(ctx, plan)
	if err != nil {
		execErr := &executor.ExecutionError{Question: req.Question, Err: err}
		return s.fail(ctx, req, started, qi, plan, execErr)
	}

	resp := &models.AskResponse{
		Answer:  formatAnswer(qi, rows),
		Success: true,
	}
	if req.Debug {
		s.addDebugFields(resp, qi, plan)
	}

	s.record(ctx, req, qi, plan, rewrites, started, true, "")
	return resp
}

func (s *AskService) executorFor(plan *pipeline.Plan) executor.Executor {
	if plan.Target == pipeline.TargetMySQL {
		return s.mysqlExec
	}
	return s.mongoExec
}

// fail maps the error taxonomy onto user-facing answers. Clarification
// requests for ambiguous/unresolved entities, a plain apology for synthesis
// failures, and a wrapped-and-logged propagation for executor errors.
func (s *AskService) fail(ctx context.Context, req *models.AskRequest, started time.Time, qi *intent.QueryIntent, plan *pipeline.Plan, err error) *models.AskResponse {
	answer, failureKind := s.describeFailure(req.Question, err)

	resp := &models.AskResponse{Answer: answer, Success: false}
	if req.Debug && qi != nil {
		s.addDebugFields(resp, qi, plan)
	}

	s.record(ctx, req, qi, plan, nil, started, false, failureKind)
	return resp
}

func (s *AskService) describeFailure(question string, err error) (answer, kind string) {
	if msg, ok := clarificationAnswer(err); ok {
		return msg, "clarification"
	}

	var synthErr *synthesizer.SynthesisFailedError
	if errors.As(err, &synthErr) {
		logger.LogWarn("synthesis failed", map[string]interface{}{
			"question": question,
			"reason":   synthErr.Reason,
		})
		return "No pude interpretar la consulta. ¿Puedes reformularla?", "synthesis_failed"
	}

	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		logger.LogError("query execution failed", execErr, map[string]interface{}{
			"question": question,
		})
		return "Ha ocurrido un error al consultar los datos. Inténtalo de nuevo en unos minutos.", "execution_error"
	}

	logger.LogError("unexpected failure answering question", err, map[string]interface{}{
		"question": question,
	})
	return "No he podido procesar la pregunta.", "internal_error"
}

func (s *AskService) addDebugFields(resp *models.AskResponse, qi *intent.QueryIntent, plan *pipeline.Plan) {
	resp.DatabaseType = string(qi.TargetSystem)
	if qi.TargetSystem == pipeline.TargetMySQL {
		resp.DatabaseName = s.mysqlDatabase
	} else {
		resp.DatabaseName = s.mongoDatabase
	}
	if qi.MatchedTemplate != "" {
		resp.MatchedTemplate = qi.MatchedTemplate
		resp.Confidence = templateConfidence
	} else {
		resp.Confidence = synthesizedConfidence
	}
	if plan != nil {
		resp.QueryExecuted = describePlan(plan)
	}
}

func describePlan(plan *pipeline.Plan) interface{} {
	if plan.SQL != nil {
		return plan.SQL.SQL
	}
	if plan.Mongo != nil {
		return map[string]interface{}{
			"collection": plan.Mongo.Collection,
			"stages":     plan.Mongo.Render(),
		}
	}
	return nil
}

func (s *AskService) record(ctx context.Context, req *models.AskRequest, qi *intent.QueryIntent, plan *pipeline.Plan, rewrites []string, started time.Time, success bool, failureKind string) {
	if s.audit == nil {
		return
	}

	entry := &audit.QueryLog{
		Question:    req.Question,
		Mode:        req.Mode,
		Success:     success,
		FailureKind: failureKind,
		DurationMs:  time.Since(started).Milliseconds(),
	}
	if qi != nil {
		entry.DatabaseType = string(qi.TargetSystem)
		entry.MatchedTemplate = qi.MatchedTemplate
		entry.Synthesized = qi.MatchedTemplate == ""
	}
	if plan != nil {
		entry.QueryExecuted = audit.ToJSON(describePlan(plan))
	}
	if len(rewrites) > 0 {
		entry.Rewrites = audit.ToJSON(rewrites)
	}

	s.audit.Record(ctx, entry)
}
