package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// This file consumes the AI symptom-classification service: free-text
// symptoms in, a single recommended department out. The classifier is an
// opaque chat-completion endpoint speaking the OpenAI wire protocol, reached
// through a configurable gateway base URL. The model is instructed to answer
// with strict JSON, but models drift, so the parser strips markdown fences
// and degrades to a safe family-medicine recommendation when the output
// still does not parse.

// symptomSystemPrompt constrains the model to exactly one department from
// the same list the keyword classifier uses, as pure JSON.
const symptomSystemPrompt = `당신은 한국의 의료 시스템에 익숙한 의료 상담 도우미입니다.
환자의 증상을 듣고 가장 적합한 하나의 진료과만 추천해주세요.

중요: 반드시 하나의 진료과만 추천하세요. 여러 개를 나열하지 마세요.

가능한 진료과 목록:
내과, 소아청소년과, 정형외과, 피부과, 이비인후과, 안과, 산부인과, 치과,
한의원, 정신건강의학과, 비뇨기과, 외과, 신경과, 재활의학과, 가정의학과

응답 형식: 반드시 순수한 JSON만 반환하세요. 마크다운, 코드 블록, 설명 없이 JSON만 작성하세요.

{
  "department": "하나의 진료과만 (예: 내과)",
  "reason": "추천 이유 (2-3문장)",
  "urgency": "low|medium|high",
  "additionalAdvice": "추가 조언 (선택사항)"
}

만약 응급 상황으로 판단되면 urgency를 "high"로 설정하고 119 또는 응급실 방문을 권유하세요.`

// SymptomChecker classifies a symptom description into a department
// recommendation.
type SymptomChecker interface {
	Classify(ctx context.Context, symptoms string) (DepartmentRecommendation, error)
}

// GatewaySymptomChecker implements SymptomChecker against an
// OpenAI-compatible chat-completion gateway.
type GatewaySymptomChecker struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewGatewaySymptomChecker(apiKey, baseURL, model string, logger *slog.Logger) *GatewaySymptomChecker {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	return &GatewaySymptomChecker{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

// Classify sends the symptom text to the gateway and parses the structured
// recommendation. Empty input is ErrInvalidInput; gateway failures are
// ErrUpstreamUnavailable.
func (c *GatewaySymptomChecker) Classify(ctx context.Context, symptoms string) (DepartmentRecommendation, error) {
	if strings.TrimSpace(symptoms) == "" {
		return DepartmentRecommendation{}, fmt.Errorf("%w: symptoms must not be empty", ErrInvalidInput)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: symptomSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: symptoms},
		},
		MaxCompletionTokens: 500,
	})
	if err != nil {
		return DepartmentRecommendation{}, fmt.Errorf("%w: symptom classifier: %v", ErrUpstreamUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return DepartmentRecommendation{}, fmt.Errorf("%w: symptom classifier returned no choices", ErrUpstreamUnavailable)
	}

	raw := resp.Choices[0].Message.Content
	recommendation, parseErr := parseRecommendation(raw)
	if parseErr != nil {
		c.logger.Warn("symptom classifier returned unparseable output, degrading",
			"error", parseErr, "raw", truncateBody(raw, 200))
		return DepartmentRecommendation{
			Department:       "가정의학과",
			Reason:           strings.TrimSpace(raw),
			Urgency:          "medium",
			AdditionalAdvice: "정확한 진단을 위해 병원을 방문해주세요.",
		}, nil
	}
	return recommendation, nil
}

var markdownFence = regexp.MustCompile("^```(?:json)?\\s*\\n?|\\n?```\\s*$")

// parseRecommendation parses the model output, tolerating markdown code
// fences around the JSON.
func parseRecommendation(raw string) (DepartmentRecommendation, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = markdownFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var recommendation DepartmentRecommendation
	if err := json.Unmarshal([]byte(cleaned), &recommendation); err != nil {
		return DepartmentRecommendation{}, fmt.Errorf("not valid recommendation JSON: %w", err)
	}
	if recommendation.Department == "" {
		return DepartmentRecommendation{}, fmt.Errorf("recommendation is missing a department")
	}
	return recommendation, nil
}
