package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"autocase/internal/config"
	"autocase/internal/featurepoint"
	"autocase/internal/gencase"
	"autocase/internal/llm"
	"autocase/internal/logging"
	"autocase/internal/output"
)

const (
	defaultInputDir  = "inputs"
	defaultOutputDir = "outputs"
)

type genFlags struct {
	fileArg      string
	llmConfigArg string
	promptArg    string
	outputArg    string
	jsonOnlyArg  bool
	noBannerArg  bool
	logFileArg   string
	verboseArg   bool
}

// Execute 运行根命令并把错误映射为进程退出码。
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitCode(err)
	}
	return 0
}

// ExitCode 按错误类别给出退出码，脚本调用方可据此分支。
func ExitCode(err error) int {
	var malformed *featurepoint.MalformedInputError
	var authErr *llm.AuthError
	var transportErr *llm.TransportError
	var genFailed *gencase.GenerationFailedError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &malformed):
		return 2
	case errors.Is(err, llm.ErrDisabled):
		return 3
	case errors.As(err, &authErr):
		return 4
	case errors.As(err, &transportErr):
		return 5
	case errors.As(err, &genFailed):
		return 6
	default:
		return 1
	}
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &genFlags{}

	root := &cobra.Command{
		Use:           "autocase",
		Short:         "根据功能点描述生成标准测试用例表格（Excel/CSV/JSON）",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGen(stdout, stderr, flags),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true

	root.Flags().StringVarP(&flags.fileArg, "file", "f", "", "输入YAML文件路径，不提供则从STDIN读取")
	root.Flags().StringVar(&flags.llmConfigArg, "llm-config", "", "大模型参数配置文件路径，默认使用内置配置")
	root.Flags().StringVar(&flags.promptArg, "prompt", "", "系统级prompt文件路径，默认使用内置prompt")
	root.Flags().StringVarP(&flags.outputArg, "output", "o", "", "输出文件路径（支持 .xlsx 或 .csv）")
	root.Flags().BoolVar(&flags.jsonOnlyArg, "json-only", false, "仅输出JSON到STDOUT，不生成表格文件")
	root.Flags().BoolVar(&flags.noBannerArg, "no-banner", false, "关闭启动Banner显示")
	root.Flags().StringVar(&flags.logFileArg, "log-file", "", "NDJSON 日志文件路径")
	root.Flags().BoolVar(&flags.verboseArg, "verbose", false, "输出详细 NDJSON 日志到STDOUT")
	return root
}

func runGen(stdout, stderr io.Writer, flags *genFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !flags.noBannerArg && !flags.verboseArg {
			printBanner(stdout)
		}

		raw, err := readInput(cmd, flags.fileArg)
		if err != nil {
			return err
		}
		fps, err := featurepoint.Parse(raw)
		if err != nil {
			return err
		}

		cfg, err := config.Load(flags.llmConfigArg)
		if err != nil {
			return err
		}
		systemPrompt, err := config.LoadSystemPrompt(flags.promptArg)
		if err != nil {
			return err
		}

		// .env 里的 key 先进环境，再由网关按 api_key_env 取用
		_ = godotenv.Load()
		gateway, err := llm.New(cfg)
		if err != nil {
			return err
		}

		var logOut io.Writer
		if flags.verboseArg {
			logOut = stdout
		}
		logger, closer, err := logging.New(logOut, flags.logFileArg)
		if err != nil {
			return fmt.Errorf("初始化日志失败：%w", err)
		}
		if closer != nil {
			defer closer.Close()
		}
		logger.Emit(logging.Event{Event: "startup"})
		logger.Emit(logging.Event{Event: "parse_ok", Cases: len(fps), Input: flags.fileArg})

		res, err := gencase.Run(cmd.Context(), gencase.Options{
			FeaturePoints: fps,
			Config:        cfg,
			SystemPrompt:  systemPrompt,
			Gateway:       gateway,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		for _, f := range res.Failed {
			fmt.Fprintln(stderr, f.Err.Error())
		}

		if flags.jsonOnlyArg {
			b, err := output.JSONDocument(res.Cases)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(b))
		} else {
			outPath := resolveOutputPath(flags.outputArg, flags.fileArg)
			if dir := filepath.Dir(outPath); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("创建输出目录失败：%w", err)
				}
			}
			if strings.EqualFold(filepath.Ext(outPath), ".csv") {
				err = output.WriteCSVFile(outPath, res.Cases)
			} else {
				err = output.WriteExcel(outPath, res.Cases)
			}
			if err != nil {
				return err
			}
			logger.Emit(logging.Event{Event: "write_ok", OutputFile: outPath, Cases: len(res.Cases)})
			fmt.Fprintln(stdout, "已生成: "+outPath)
		}

		if len(res.Failed) > 0 {
			return res.Failed[0].Err
		}
		return nil
	}
}

func readInput(cmd *cobra.Command, fileArg string) ([]byte, error) {
	if strings.TrimSpace(fileArg) == "" {
		if isTerminal(cmd.InOrStdin()) {
			_ = cmd.Help()
			return nil, &featurepoint.MalformedInputError{Reason: "未提供输入文件且 STDIN 为空"}
		}
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("读取 STDIN 失败：%w", err)
		}
		if len(strings.TrimSpace(string(raw))) == 0 {
			return nil, &featurepoint.MalformedInputError{Reason: "未读取到输入内容"}
		}
		return raw, nil
	}

	path := resolveInputPath(fileArg)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &featurepoint.MalformedInputError{Reason: "输入文件不存在: " + fileArg}
		}
		return nil, fmt.Errorf("读取输入文件失败：%w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &featurepoint.MalformedInputError{Reason: "未读取到输入内容"}
	}
	return raw, nil
}

// resolveInputPath 相对路径找不到时再去 inputs/ 下找一次。
func resolveInputPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(defaultInputDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// resolveOutputPath 未指定输出时按输入文件名推导到 outputs/ 目录。
func resolveOutputPath(outputArg, inputArg string) string {
	if strings.TrimSpace(outputArg) != "" {
		if filepath.IsAbs(outputArg) {
			return outputArg
		}
		return filepath.Join(defaultOutputDir, outputArg)
	}
	base := "output"
	if strings.TrimSpace(inputArg) != "" {
		name := filepath.Base(inputArg)
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return filepath.Join(defaultOutputDir, base+"_testcases.xlsx")
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
