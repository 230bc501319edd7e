package gencase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"autocase/internal/config"
	"autocase/internal/featurepoint"
	"autocase/internal/llm"
)

func runConfig(mutate func(*config.Config)) *config.Config {
	cfg := &config.Config{
		Enabled:     true,
		RetryCount:  2,
		Concurrency: 1,
		OnFailure:   config.OnFailureAbort,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func featurePoints(n int) []featurepoint.FeaturePoint {
	out := make([]featurepoint.FeaturePoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, featurepoint.FeaturePoint{
			Module:      fmt.Sprintf("M%d", i+1),
			Feature:     fmt.Sprintf("f%d", i+1),
			Description: "d",
			Keywords:    []string{fmt.Sprintf("kw%d", i+1)},
		})
	}
	return out
}

// 每个功能点返回两个用例，name 里带上模块名方便断言归属。
func perModuleGateway() llm.Gateway {
	return &fakeGateway{fn: func(_ int, req llm.Request) (string, error) {
		module := ""
		for _, line := range strings.Split(req.UserContent, "\n") {
			if strings.HasPrefix(line, "模块: ") {
				module = strings.TrimPrefix(line, "模块: ")
			}
		}
		return fmt.Sprintf(`[
			{"type":"t","name":"%s-case1","priority":"P1","pre":"","steps":["s"],"expected":["e"],"stage":"x"},
			{"type":"t","name":"%s-case2","priority":"P2","pre":"","steps":["s"],"expected":["e"],"stage":"x"}
		]`, module, module), nil
	}}
}

func TestRunSequentialContiguousIDs(t *testing.T) {
	fps := featurePoints(3)
	res, err := Run(context.Background(), Options{
		FeaturePoints: fps,
		Config:        runConfig(nil),
		SystemPrompt:  "sys",
		Gateway:       perModuleGateway(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Cases) != 6 {
		t.Fatalf("expected 6 cases, got %d", len(res.Cases))
	}
	for i, c := range res.Cases {
		if c.ID != i+1 {
			t.Fatalf("ids must form a contiguous run from 1: case %d has id %d", i, c.ID)
		}
	}
	// 模块与关键词取自功能点，顺序按声明顺序
	if res.Cases[0].Module != "M1" || res.Cases[2].Module != "M2" || res.Cases[4].Module != "M3" {
		t.Fatalf("grouping order mismatch: %+v", res.Cases)
	}
	if res.Cases[3].Keywords[0] != "kw2" {
		t.Fatalf("keywords must follow the originating feature point: %v", res.Cases[3].Keywords)
	}
}

func TestRunConcurrentIDsDeterministic(t *testing.T) {
	fps := featurePoints(8)
	res, err := Run(context.Background(), Options{
		FeaturePoints: fps,
		Config:        runConfig(func(c *config.Config) { c.Concurrency = 4 }),
		SystemPrompt:  "sys",
		Gateway:       perModuleGateway(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Cases) != 16 {
		t.Fatalf("expected 16 cases, got %d", len(res.Cases))
	}
	for i, c := range res.Cases {
		if c.ID != i+1 {
			t.Fatalf("concurrent scheduling must not change id assignment: case %d has id %d", i, c.ID)
		}
		wantModule := fmt.Sprintf("M%d", i/2+1)
		if c.Module != wantModule {
			t.Fatalf("case %d should belong to %s, got %s", i, wantModule, c.Module)
		}
	}
}

func TestRunAbortPolicy(t *testing.T) {
	gw := &fakeGateway{fn: func(_ int, req llm.Request) (string, error) {
		if strings.Contains(req.UserContent, "模块: M2") {
			return "not json", nil
		}
		return validArray, nil
	}}
	_, err := Run(context.Background(), Options{
		FeaturePoints: featurePoints(3),
		Config:        runConfig(func(c *config.Config) { c.RetryCount = 1 }),
		SystemPrompt:  "sys",
		Gateway:       gw,
	})
	var failed *GenerationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("abort policy should surface GenerationFailedError, got %v", err)
	}
	if failed.Module != "M2" {
		t.Fatalf("failure should identify the feature point: %+v", failed)
	}
}

func TestRunContinuePolicy(t *testing.T) {
	gw := &fakeGateway{fn: func(_ int, req llm.Request) (string, error) {
		if strings.Contains(req.UserContent, "模块: M2") {
			return "not json", nil
		}
		return validArray, nil
	}}
	res, err := Run(context.Background(), Options{
		FeaturePoints: featurePoints(3),
		Config: runConfig(func(c *config.Config) {
			c.RetryCount = 0
			c.OnFailure = config.OnFailureContinue
		}),
		SystemPrompt: "sys",
		Gateway:      gw,
	})
	if err != nil {
		t.Fatalf("continue policy should not abort the run: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].FeaturePoint.Module != "M2" {
		t.Fatalf("failed list mismatch: %+v", res.Failed)
	}
	if len(res.Cases) != 2 {
		t.Fatalf("expected cases from M1 and M3, got %d", len(res.Cases))
	}
	if res.Cases[0].ID != 1 || res.Cases[1].ID != 2 {
		t.Fatalf("surviving cases keep contiguous ids: %+v", res.Cases)
	}
	if res.Cases[1].Module != "M3" {
		t.Fatalf("second case should come from M3: %+v", res.Cases[1])
	}
}

func TestRunScenarioFromOrdersRefund(t *testing.T) {
	fp := featurepoint.FeaturePoint{
		Module:      "Orders",
		Feature:     "Refund",
		Description: "user requests refund",
		Keywords:    []string{"refund", "order"},
	}
	gw := &fakeGateway{fn: func(int, llm.Request) (string, error) {
		return `[{"type":"functional","name":"Refund happy path","priority":"P1","pre":"order exists","steps":["open order","click refund"],"expected":["refund form shown","refund submitted"],"stage":"regression"}]`, nil
	}}
	res, err := Run(context.Background(), Options{
		FeaturePoints: []featurepoint.FeaturePoint{fp},
		Config:        runConfig(nil),
		SystemPrompt:  "sys",
		Gateway:       gw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(res.Cases))
	}
	c := res.Cases[0]
	if c.ID != 1 || c.Module != "Orders" {
		t.Fatalf("id/module mismatch: %+v", c)
	}
	if c.Keywords[0] != "refund" || c.Keywords[1] != "order" {
		t.Fatalf("keywords mismatch: %v", c.Keywords)
	}
	if c.Type != "functional" || c.Name != "Refund happy path" || c.Priority != "P1" ||
		c.Pre != "order exists" || c.Stage != "regression" {
		t.Fatalf("model-supplied fields must be unchanged: %+v", c)
	}
	if gw.calls() != 1 {
		t.Fatalf("no retry should be issued, got %d calls", gw.calls())
	}
}
