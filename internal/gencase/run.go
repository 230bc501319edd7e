package gencase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"autocase/internal/config"
	"autocase/internal/featurepoint"
	"autocase/internal/llm"
	"autocase/internal/logging"
)

type Options struct {
	FeaturePoints []featurepoint.FeaturePoint
	Config        *config.Config
	SystemPrompt  string
	Gateway       llm.Gateway
	Logger        *logging.Logger
}

// FailedFeature 在 on_failure: continue 策略下记录失败的功能点。
type FailedFeature struct {
	FeaturePoint featurepoint.FeaturePoint
	Err          error
}

type Result struct {
	Cases  []TestCase
	Failed []FailedFeature
}

// Run 依声明顺序处理全部功能点。concurrency > 1 时用有界协程池并发生成，
// 各功能点的状态机彼此独立；编号统一在全部完成后按声明顺序一次性分配，
// 调度顺序不影响编号结果。
func Run(ctx context.Context, opts Options) (*Result, error) {
	ctrl := &Controller{
		Gateway:      opts.Gateway,
		SystemPrompt: opts.SystemPrompt,
		RetryCount:   opts.Config.RetryCount,
		RetrySuffix:  opts.Config.RetryPromptSuffix,
		Logger:       opts.Logger,
	}
	abort := opts.Config.OnFailure == config.OnFailureAbort

	perFeature := make([][]CaseRecord, len(opts.FeaturePoints))
	failures := make([]error, len(opts.FeaturePoints))

	if opts.Config.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Config.Concurrency)
		for i, fp := range opts.FeaturePoints {
			i, fp := i, fp
			g.Go(func() error {
				records, err := ctrl.Generate(gctx, fp)
				if err != nil {
					if abort {
						return err
					}
					failures[i] = err
					return nil
				}
				perFeature[i] = records
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, fp := range opts.FeaturePoints {
			records, err := ctrl.Generate(ctx, fp)
			if err != nil {
				if abort {
					return nil, err
				}
				failures[i] = err
				continue
			}
			perFeature[i] = records
		}
	}

	res := &Result{}
	cursor := 1
	for i, fp := range opts.FeaturePoints {
		if failures[i] != nil {
			opts.Logger.Emit(logging.Event{Level: "error", Event: "generate_failed", Module: fp.Module, Feature: fp.Feature, Error: failures[i].Error()})
			res.Failed = append(res.Failed, FailedFeature{FeaturePoint: fp, Err: failures[i]})
			continue
		}
		var cases []TestCase
		cases, cursor = Normalize(fp, perFeature[i], cursor)
		opts.Logger.Emit(logging.Event{Event: "generate_ok", Module: fp.Module, Feature: fp.Feature, Cases: len(cases)})
		res.Cases = append(res.Cases, cases...)
	}
	return res, nil
}
