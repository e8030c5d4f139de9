package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ByLCY/barlabel/config"
	"github.com/ByLCY/barlabel/dsl"
	"github.com/ByLCY/barlabel/ingest"
	"github.com/ByLCY/barlabel/labels"
	"github.com/ByLCY/barlabel/layout"
	canvasrenderer "github.com/ByLCY/barlabel/renderer/canvas"
	"github.com/ByLCY/barlabel/server"
)

type cliOptions struct {
	input    string
	csvPath  string
	rangeArg string
	preset   string
	custom   string
	output   string
	pngDir   string
	debug    string
	viewport float64
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.input, "in", "", "标签任务文件路径（.labels）")
	flag.StringVar(&opts.csvPath, "csv", "", "CSV 文件：第一列条码，第二列说明")
	flag.StringVar(&opts.rangeArg, "range", "", "号段，格式 前缀:起始:结束，例如 BIN-:1:100")
	flag.StringVar(&opts.preset, "preset", "", "预设规格编号，例如 2x1-2col")
	flag.StringVar(&opts.custom, "custom", "", "自定义整页尺寸 宽x高[x列数]，例如 100x50x2 或 4inx1in")
	flag.StringVar(&opts.output, "out", "output/labels.pdf", "PDF 输出路径")
	flag.StringVar(&opts.pngDir, "png", "", "逐张输出 PNG 的目录")
	flag.StringVar(&opts.debug, "debug", "", "渲染结果调试 JSON 输出路径")
	flag.Float64Var(&opts.viewport, "viewport", 0, "预览容器宽度（px）")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	serveAddr := flag.String("serve", "", "以 HTTP 服务方式运行并监听该地址，例如 :8080（\"config\" 表示使用配置中的 server.addr）")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
		cfg = loaded
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("%v", err)
	}
	labels.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	svc, err := labels.NewService(serviceOptions(cfg))
	if err != nil {
		log.Fatalf("初始化渲染服务失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serveAddr == "config" {
		*serveAddr = cfg.Server.Addr
	}
	if *serveAddr != "" {
		labels.Logger().Info("starting server", "mode", cfg.Mode, "addr", *serveAddr)
		if err := server.Run(ctx, *serveAddr, server.New(cfg, svc)); err != nil {
			log.Fatalf("HTTP 服务异常退出: %v", err)
		}
		return
	}

	res, err := run(ctx, svc, opts)
	if err != nil {
		log.Fatalf("生成标签失败: %v", err)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "跳过第 %d 条 %q: %s\n", f.Index+1, f.Code, f.Reason)
	}
	fmt.Printf("已生成 PDF：%s（%d 张标签，%d 页）\n", opts.output, len(res.Rendered), len(res.Pages))
}

func serviceOptions(cfg *config.Config) labels.Options {
	return labels.Options{
		Render: canvasrenderer.Options{
			Supersample:    cfg.Render.Supersample,
			BarHeightRatio: cfg.Render.BarHeightRatio,
			MinCaptionPt:   cfg.Render.MinCaptionPt,
			Symbology:      cfg.Render.Symbology,
			ShowCaption:    cfg.Render.Captions(),
			Font:           cfg.Render.Font,
			Workers:        cfg.Render.Workers,
			Logger:         labels.Logger(),
		},
		Preview:    layout.ScaleOptions{PaddingPx: cfg.Preview.PaddingPx},
		ViewportPx: cfg.Preview.ViewportPx,
	}
}

// run 串联读取、渲染与输出。
func run(ctx context.Context, svc *labels.Service, opts cliOptions) (*layout.Result, error) {
	req, err := buildRequest(opts)
	if err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("没有可渲染的条目（请指定 -in、-csv 或 -range）")
	}

	res, err := svc.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if opts.debug != "" {
		if err := writeDebug(res, opts.debug); err != nil {
			return nil, err
		}
	}
	if opts.pngDir != "" {
		if err := writePNGs(res, opts.pngDir); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return nil, fmt.Errorf("创建 PDF 文件失败: %w", err)
	}
	defer f.Close()
	if err := svc.WritePDF(res, f); err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return res, f.Close()
}

// buildRequest 依次合并任务文件、CSV 与号段中的条目；命令行规格覆盖任务文件中的规格。
func buildRequest(opts cliOptions) (labels.Request, error) {
	req := labels.Request{Geometry: layout.PresetConfig(layout.DefaultPresetID)}

	if opts.input != "" {
		file, err := os.Open(opts.input)
		if err != nil {
			return req, fmt.Errorf("无法打开任务文件 %s: %w", opts.input, err)
		}
		defer file.Close()
		doc, err := dsl.Parse(file)
		if err != nil {
			return req, fmt.Errorf("解析任务文件失败: %w", err)
		}
		job, err := layout.Compile(doc, layout.CompileOptions{
			Entries: ingest.Source{BaseDir: filepath.Dir(opts.input)},
		})
		if err != nil {
			return req, fmt.Errorf("编译任务文件失败: %w", err)
		}
		req = labels.RequestFromJob(job)
	}

	if opts.csvPath != "" {
		entries, err := ingest.Source{}.LoadCSV(opts.csvPath)
		if err != nil {
			return req, err
		}
		req.Entries = append(req.Entries, entries...)
	}
	if opts.rangeArg != "" {
		parts := strings.Split(opts.rangeArg, ":")
		if len(parts) != 3 {
			return req, fmt.Errorf("%w: -range 格式为 前缀:起始:结束", ingest.ErrInvalidRange)
		}
		entries, err := ingest.Range(parts[0], parts[1], parts[2])
		if err != nil {
			return req, err
		}
		req.Entries = append(req.Entries, entries...)
	}

	switch {
	case opts.custom != "":
		cfg, err := parseCustom(opts.custom)
		if err != nil {
			return req, err
		}
		req.Geometry = cfg
	case opts.preset != "":
		req.Geometry = layout.PresetConfig(opts.preset)
	}
	if opts.viewport > 0 {
		req.ViewportPx = opts.viewport
	}
	return req, nil
}

// parseCustom 解析 宽x高[x列数]，数值可带单位（mm/cm/in/pt）。
func parseCustom(s string) (layout.GeometryConfig, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) < 2 || len(parts) > 3 {
		return layout.GeometryConfig{}, fmt.Errorf("%w: -custom 格式为 宽x高[x列数]，实际 %q", layout.ErrInvalidDimension, s)
	}
	cfg := layout.CustomConfig(parts[0], parts[1], "")
	if len(parts) == 3 {
		cfg.Columns = parts[2]
	}
	if _, err := layout.Resolve(cfg); err != nil {
		return layout.GeometryConfig{}, err
	}
	return cfg, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func writePNGs(res *layout.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建 PNG 目录失败: %w", err)
	}
	for _, r := range res.Rendered {
		name := fmt.Sprintf("%04d-%s.png", r.Index+1, unsafeName.ReplaceAllString(r.Code, "_"))
		if err := os.WriteFile(filepath.Join(dir, name), r.Image, 0o644); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", name, err)
		}
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
