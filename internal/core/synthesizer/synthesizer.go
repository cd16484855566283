// Package synthesizer is the LLM-backed fallback path for question shapes
// with no hardcoded template. Model output is never executed as-is: it passes
// the validation gauntlet first, with at most one repair attempt.
package synthesizer

import (
	"context"
	"time"

	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/semantics"
)

// LLMClient is the effectful boundary to the language model. Satisfied by
// llm.Service in production and by deterministic stubs in tests.
type LLMClient interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Synthesizer builds pipelines via the LLM, grounded on the semantic fields
// relevant to the question.
type Synthesizer struct {
	llm       LLMClient
	dict      *semantics.Dictionary
	validator *Validator
	timeout   time.Duration
}

func New(llm LLMClient, dict *semantics.Dictionary, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Synthesizer{
		llm:       llm,
		dict:      dict,
		validator: NewValidator(dict),
		timeout:   timeout,
	}
}

// Synthesize produces a validated plan for the question, plus the list of
// silent rewrites applied. Unrepairable output after the single permitted
// repair attempt yields SynthesisFailedError.
func (s *Synthesizer) Synthesize(ctx context.Context, qi *intent.QueryIntent) (*pipeline.Plan, []string, error) {
	fields := s.dict.RelevantFields(qi.Normalized)
	if len(fields) == 0 {
		fields = s.dict.All()
	}

	var systemPrompt string
	if qi.TargetSystem == pipeline.TargetMySQL {
		systemPrompt = buildSQLSystemPrompt(fields)
	} else {
		systemPrompt = buildMongoSystemPrompt(fields)
	}

	userMessage := buildUserMessage(qi)

	raw, err := s.generate(ctx, systemPrompt, userMessage)
	if err != nil {
		return nil, nil, &SynthesisFailedError{Question: qi.RawQuestion, Reason: err.Error()}
	}

	plan, rewrites, err := s.parseAndValidate(raw, qi)
	if err == nil {
		return plan, rewrites, nil
	}

	// One repair attempt: re-prompt with the validator's complaint. LLM calls
	// are costly and non-deterministic, so there is no retry loop beyond this.
	repaired, genErr := s.generate(ctx, systemPrompt, buildRepairMessage(qi, raw, err.Error()))
	if genErr != nil {
		return nil, nil, &SynthesisFailedError{Question: qi.RawQuestion, Reason: genErr.Error()}
	}

	plan, rewrites, err = s.parseAndValidate(repaired, qi)
	if err != nil {
		return nil, nil, &SynthesisFailedError{Question: qi.RawQuestion, Reason: err.Error()}
	}
	return plan, rewrites, nil
}

func (s *Synthesizer) generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.llm.GenerateResponse(callCtx, systemPrompt, userMessage)
}

func (s *Synthesizer) parseAndValidate(raw string, qi *intent.QueryIntent) (*pipeline.Plan, []string, error) {
	if qi.TargetSystem == pipeline.TargetMySQL {
		query, err := parseSQLResponse(raw)
		if err != nil {
			return nil, nil, err
		}
		rewrites, err := s.validator.ValidateSQL(query, qi.OutputShape)
		if err != nil {
			return nil, nil, err
		}
		return &pipeline.Plan{Target: pipeline.TargetMySQL, SQL: query}, rewrites, nil
	}

	p, err := parseMongoResponse(raw)
	if err != nil {
		return nil, nil, err
	}
	rewrites, err := s.validator.ValidateMongo(p, qi.OutputShape)
	if err != nil {
		return nil, nil, err
	}
	return &pipeline.Plan{Target: pipeline.TargetMongoDB, Mongo: p}, rewrites, nil
}
