package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptEmbedsContractContextAndQuestion(t *testing.T) {
	req := BuildPrompt("今月の売上は？", `[{"Revenue":"1,000,000"}]`)

	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
	require.Len(t, req.Contents[0].Parts, 1)

	text := req.Text()
	assert.True(t, strings.HasPrefix(text, instructionContract))
	assert.Contains(t, text, "1,000,000")
	assert.Equal(t, instructionContract+`[{"Revenue":"1,000,000"}]`+"\n\n【質問】\n今月の売上は？", text)
	assert.Equal(t, Instructions(`[{"Revenue":"1,000,000"}]`)+"\n\n【質問】\n今月の売上は？", text)
}

func TestBuildPromptFixedGenerationConfig(t *testing.T) {
	req := BuildPrompt("q", "d")
	assert.Equal(t, 0.7, req.GenerationConfig.Temperature)
	assert.Equal(t, 8192, req.GenerationConfig.MaxOutputTokens)
}

func TestBuildPromptWireShape(t *testing.T) {
	b, err := json.Marshal(BuildPrompt("q", "d"))
	require.NoError(t, err)

	var wire struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig map[string]float64 `json:"generationConfig"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Len(t, wire.Contents, 1)
	assert.Equal(t, "user", wire.Contents[0].Role)
	assert.True(t, strings.HasSuffix(wire.Contents[0].Parts[0].Text, "【質問】\nq"))
	assert.Equal(t, map[string]float64{"temperature": 0.7, "maxOutputTokens": 8192}, wire.GenerationConfig)
}

func TestContractKeepsAnomalyThresholds(t *testing.T) {
	for _, want := range []string{
		"「計画比 ±5%以上」または「前月比 ±10%以上」または「前年差 ±10%以上」",
		"「前年差/計画差の金額が上位3位」",
		"閾値に満たない場合でも“影響額が大きい”ものは挙げる（影響額上位）。",
		"1. 【結論】",
		"4. 【計算サマリー表】（必須）",
		"6. 【追加で欲しいデータ】",
		"## 経営実績データ\n",
	} {
		assert.Contains(t, instructionContract, want)
	}
	assert.True(t, strings.HasSuffix(instructionContract, "## 経営実績データ\n"))
}

func TestBuildPromptIsPure(t *testing.T) {
	a, _ := json.Marshal(BuildPrompt("q", "d"))
	b, _ := json.Marshal(BuildPrompt("q", "d"))
	assert.Equal(t, string(a), string(b))
}
