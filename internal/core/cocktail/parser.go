package cocktail

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"cocktail-generator/internal/pkg/common"
)

// 解析階段
const (
	StageEmpty    = "empty"
	StageExtract  = "extract"
	StageDecode   = "decode"
	StageValidate = "validate"
)

var (
	// ErrEmptyResponse 模型沒有回傳內容
	ErrEmptyResponse = errors.New("no response content received from AI")
	// ErrMalformedJSON 回應中找不到可解析的 JSON 物件
	ErrMalformedJSON = errors.New("no valid JSON object found in response")
	// ErrMissingField 缺少必要欄位
	ErrMissingField = errors.New("missing required field")
)

// RequiredFields 酒譜必要欄位，依檢查順序排列
var RequiredFields = []string{
	"name",
	"description",
	"ingredients",
	"instructions",
	"garnish",
	"glassware",
	"tips",
	"substitutions",
}

var stepNumberPattern = regexp.MustCompile(`^\d+\.\s*`)

// MissingFieldError 指出第一個缺少的欄位
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField.Error(), e.Field)
}

// Is 讓 errors.Is(err, ErrMissingField) 成立
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ParseError 標記失敗的解析階段
type ParseError struct {
	Stage string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse recipe (%s, field %q): %v", e.Stage, e.Field, e.Err)
	}
	return fmt.Sprintf("parse recipe (%s): %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseRecipe 從模型輸出中取出、驗證並正規化酒譜
func ParseRecipe(content string) (*Recipe, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Stage: StageEmpty, Err: ErrEmptyResponse}
	}

	raw, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, &ParseError{Stage: StageExtract, Err: ErrMalformedJSON}
	}

	var fields map[string]json.RawMessage
	if err := common.ParseJSON(raw, &fields); err != nil {
		return nil, &ParseError{Stage: StageDecode, Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}

	for _, name := range RequiredFields {
		value, ok := fields[name]
		if !ok || isNull(value) {
			return nil, &ParseError{Stage: StageValidate, Field: name, Err: &MissingFieldError{Field: name}}
		}
	}

	recipe := &Recipe{}
	targets := []struct {
		name string
		dst  any
	}{
		{"name", &recipe.Name},
		{"description", &recipe.Description},
		{"ingredients", &recipe.Ingredients},
		{"instructions", &recipe.Instructions},
		{"garnish", &recipe.Garnish},
		{"glassware", &recipe.Glassware},
		{"tips", &recipe.Tips},
		{"substitutions", &recipe.Substitutions},
	}
	for _, t := range targets {
		if err := json.Unmarshal(fields[t.name], t.dst); err != nil {
			return nil, &ParseError{Stage: StageDecode, Field: t.name, Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
		}
	}

	for i, step := range recipe.Instructions {
		recipe.Instructions[i] = NormalizeInstruction(step)
	}

	return recipe, nil
}

// NormalizeInstruction 移除步驟開頭的編號，例如 "1. "
func NormalizeInstruction(step string) string {
	return stepNumberPattern.ReplaceAllString(step, "")
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
