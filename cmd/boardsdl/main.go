package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/boardsdl/internal/config"
	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/infra/fsx"
	"github.com/John-Robertt/boardsdl/internal/infra/httpx"
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/provider/builtin"
)

func main() {
	os.Exit(newCLI(os.Stdout, os.Stderr).run(context.Background(), os.Args[1:]))
}

// exitError 携带退出码；消息已经输出过时 msg 为空。
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

type cli struct {
	stdout io.Writer
	stderr io.Writer

	// newRegistry 默认是内置 provider；测试中替换为指向本地服务的 provider。
	newRegistry func() (provider.Registry, error)
	getwd       func() (string, error)

	configDir string
	logLevel  string
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout:      stdout,
		stderr:      stderr,
		newRegistry: builtin.NewRegistry,
		getwd:       os.Getwd,
	}
}

func (c *cli) run(ctx context.Context, args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(c.stderr, ee.msg)
		}
		return ee.code
	}
	fmt.Fprintf(c.stderr, "错误：%v\n", err)
	return 2
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardsdl",
		Short:         "从对弈网站下载棋谱（PGN/SGF）",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configDir, "config-dir", "", "boards.json5 所在目录（默认当前目录）")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "日志级别：debug|info|warn|error")
	root.AddCommand(c.showCmd(), c.downloadCmd(), c.testCmd())
	return root
}

// env 是一次命令执行所需的全部运行时对象。
type env struct {
	eff        config.EffectiveConfig
	log        *slog.Logger
	dispatcher *provider.Dispatcher
}

func (c *cli) setup(cmd *cobra.Command) (*env, error) {
	cwd, err := c.getwd()
	if err != nil {
		return nil, &exitError{code: 1, msg: fmt.Sprintf("读取当前目录失败：%v", err)}
	}
	args := config.CLIArgs{Dir: c.configDir}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		args.LogLevel, args.LogLevelSet = c.logLevel, true
	}
	if f := cmd.Flags().Lookup("unverified-ssl"); f != nil && f.Changed {
		args.UnverifiedSSL = f.Value.String() == "true"
		args.UnverifiedSSLSet = true
	}
	eff, err := config.LoadEffective(cwd, args)
	if err != nil {
		return nil, &exitError{code: 1, msg: err.Error()}
	}

	log := slog.New(tint.NewHandler(c.stderr, &tint.Options{
		Level:      eff.LogLevel,
		TimeFormat: time.Kitchen,
		NoColor:    !isTTY(c.stderr),
	}))
	slog.SetDefault(log)
	for _, f := range eff.Files {
		log.Debug("读取配置", "file", f)
	}

	ua := httpx.NewUserAgent(eff.FakeUA)
	hc, err := httpx.NewClient(httpx.Options{
		ProxyURL:           eff.ProxyURL,
		InsecureSkipVerify: eff.UnverifiedSSL,
		Timeout:            eff.Timeout,
		UA:                 ua,
	})
	if err != nil {
		return nil, &exitError{code: 1, msg: fmt.Sprintf("初始化 HTTP client 失败：%v", err)}
	}
	client, err := fetch.New(fetch.Options{
		HTTPClient:       hc,
		UA:               ua,
		AllowExtra:       eff.AllowExtra,
		AllowOctetStream: eff.AllowOctetStream,
		Logger:           log,
	})
	if err != nil {
		return nil, &exitError{code: 1, msg: fmt.Sprintf("初始化下载客户端失败：%v", err)}
	}

	reg, err := c.newRegistry()
	if err != nil {
		return nil, &exitError{code: 1, msg: fmt.Sprintf("初始化 provider registry 失败：%v", err)}
	}
	d := provider.NewDispatcher(reg, client, provider.Options{
		Disabled: eff.DisabledProviders,
		Timeout:  eff.Timeout,
		Logger:   log,
	})
	return &env{eff: eff, log: log, dispatcher: d}, nil
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "列出启用的 provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			ps := e.dispatcher.Active()
			sort.SliceStable(ps, func(i, j int) bool {
				return provider.Describe(ps[i]) < provider.Describe(ps[j])
			})

			t := newTable(c.stdout)
			t.AppendHeader(table.Row{"Family", "Site", "Strategy"})
			for _, p := range ps {
				id := p.Identity()
				t.AppendRow(table.Row{id.Family, id.Name, id.Strategy})
			}
			t.Render()
			return nil
		},
	}
}

func (c *cli) downloadCmd() *cobra.Command {
	var (
		output    string
		noClobber bool
	)
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "下载一个 URL（或短 ID）对应的棋谱",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			res, err := e.dispatcher.Resolve(cmd.Context(), args[0])
			if err != nil {
				e.log.Info("下载失败", "url", args[0], "attempts", formatAttempts(res.Attempts))
				e.log.Debug("失败原因", "err", err)
				return &exitError{code: 1, msg: provider.ErrNoGame.Error()}
			}
			e.log.Debug("下载完成", "provider", res.Provider.Name, "url", res.URL)

			if output == "" {
				fmt.Fprintln(c.stdout, res.Text)
				return nil
			}
			if err := writeOutput(output, res.Text+"\n", noClobber); err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("写入 %s 失败：%v", output, err)}
			}
			e.log.Info("已保存", "file", output, "provider", res.Provider.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "写入文件而不是 stdout")
	cmd.Flags().BoolVar(&noClobber, "no-clobber", false, "目标文件已存在时失败")
	cmd.Flags().Bool("unverified-ssl", false, "跳过 TLS 证书校验")
	return cmd
}

func writeOutput(path, text string, noClobber bool) error {
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if noClobber {
		return fsx.WriteFileAtomicNoOverwrite(dir, name, []byte(text))
	}
	return fsx.WriteFileAtomicReplace(dir, name, []byte(text))
}

func (c *cli) testCmd() *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "逐个执行 provider 自带的测试链接",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			if only != "" {
				if _, ok := findProvider(e.dispatcher, only); !ok {
					return &exitError{code: 2, msg: fmt.Sprintf("未知或已禁用的 provider：%q", only)}
				}
			}

			var obs provider.Observer
			interactive := isTTY(c.stdout)
			if interactive {
				ui := newSelftestUI(c.stderr)
				defer ui.Close()
				obs = ui
			}
			rep := e.dispatcher.SelfTest(cmd.Context(), only, obs)
			emitSelfTest(c.stdout, c.stderr, rep, interactive)
			if rep.Summary.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "provider", "", "只测试该名称的 provider")
	return cmd
}

func findProvider(d *provider.Dispatcher, name string) (provider.Provider, bool) {
	for _, p := range d.Active() {
		if provider.Key(p.Identity().Name) == provider.Key(name) {
			return p, true
		}
	}
	return nil, false
}

// emitSelfTest 在交互终端输出汇总表；stdout 非 TTY 时 stdout 只输出一个 SelfTestReport JSON。
func emitSelfTest(stdout, stderr io.Writer, rep domain.SelfTestReport, interactive bool) {
	summary := fmt.Sprintf("完成：total=%d passed=%d failed=%d", rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed)
	if !interactive {
		_ = json.NewEncoder(stdout).Encode(rep)
		fmt.Fprintln(stderr, summary)
		return
	}

	type counts struct{ passed, failed int }
	byProvider := map[string]*counts{}
	var names []string
	for _, it := range rep.Items {
		c, ok := byProvider[it.Provider]
		if !ok {
			c = &counts{}
			byProvider[it.Provider] = c
			names = append(names, it.Provider)
		}
		if it.Status == domain.StatusPassed {
			c.passed++
		} else {
			c.failed++
		}
	}
	t := newTable(stdout)
	t.AppendHeader(table.Row{"Provider", "Passed", "Failed"})
	for _, n := range names {
		t.AppendRow(table.Row{n, byProvider[n].passed, byProvider[n].failed})
	}
	t.AppendFooter(table.Row{"Total", rep.Summary.Passed, rep.Summary.Failed})
	t.Render()

	if rep.Summary.Failed > 0 {
		for _, it := range rep.Items {
			if it.Status == domain.StatusFailed {
				fmt.Fprintf(stderr, "%s %s: %s\n", it.Provider, it.URL, it.ErrorMsg)
			}
		}
		fmt.Fprintln(stderr, "errors occurred")
	} else {
		fmt.Fprintln(stderr, "all clear")
	}
	fmt.Fprintln(stderr, summary)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// truncate 按字符（rune）截断过长的错误信息，避免进度行换行；不会切开多字节字符。
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
