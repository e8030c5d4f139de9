package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/barlabel/binding"
	"github.com/ByLCY/barlabel/dsl"
)

// Job 是任务文件编译后的结果：规格、渲染参数与有序条目。
type Job struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Meta     DocumentMeta   `json:"meta"`
	Geometry GeometryConfig `json:"geometry"`
	Options  RenderOptions  `json:"options"`
	Entries  []Entry        `json:"entries"`
}

// pendingEntry 记录条目及其说明模板的插值参数。
type pendingEntry struct {
	Entry
	n string
}

// Compile 将 DSL AST 转换为 Job。几何配置会在此处预先解析一次，
// 以便把错误定位到任务文件的行号。
func Compile(doc *dsl.Document, opts CompileOptions) (*Job, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	job := &Job{
		Name:     doc.Name,
		Version:  doc.Version,
		Geometry: PresetConfig(DefaultPresetID),
	}
	var pending []pendingEntry
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			job.Meta = collectMeta(sec.Meta.Block)
		case sec.Geometry != nil:
			cfg, err := compileGeometry(sec.Geometry)
			if err != nil {
				return nil, err
			}
			job.Geometry = cfg
		case sec.Options != nil:
			ro, err := compileOptions(sec.Options.Block)
			if err != nil {
				return nil, err
			}
			job.Options = ro
		case sec.Entries != nil:
			items, err := compileEntries(sec.Entries.Block, opts)
			if err != nil {
				return nil, err
			}
			pending = append(pending, items...)
		}
	}

	job.Entries = make([]Entry, 0, len(pending))
	for i, p := range pending {
		e := p.Entry
		if strings.Contains(e.Caption, "${") {
			e.Caption = binding.Interpolate(e.Caption, map[string]any{
				"code":  e.Code,
				"index": i + 1,
				"n":     p.n,
			})
		}
		job.Entries = append(job.Entries, e)
	}
	return job, nil
}

func collectMeta(block *dsl.Block) DocumentMeta {
	var meta DocumentMeta
	if block == nil {
		return meta
	}
	for _, st := range block.Statements {
		if st.Assignment == nil {
			continue
		}
		val := st.Assignment.Value
		switch st.Assignment.Key {
		case "title":
			meta.Title = val.Text()
		case "author":
			meta.Author = val.Text()
		case "subject":
			meta.Subject = val.Text()
		case "creator":
			meta.Creator = val.Text()
		case "keywords":
			meta.Keywords = val.Strings()
		}
	}
	return meta
}

func compileGeometry(sec *dsl.GeometrySection) (GeometryConfig, error) {
	var cfg GeometryConfig
	switch strings.ToLower(sec.Kind) {
	case "preset":
		if len(sec.Params) == 0 {
			return cfg, fmt.Errorf("第 %d 行: geometry preset 缺少预设编号", sec.Pos.Line)
		}
		cfg = PresetConfig(sec.Params[0].Text())
	case "custom":
		cfg = GeometryConfig{Kind: GeometryCustom}
		var positional []string
		for i := 0; i < len(sec.Params); i++ {
			p := sec.Params[i]
			if p.IsIdent() && i+1 < len(sec.Params) {
				key := strings.ToLower(p.Text())
				switch key {
				case "width", "height", "columns":
					i++
					setCustomField(&cfg, key, sec.Params[i].Text())
					continue
				}
			}
			positional = append(positional, p.Text())
		}
		for i, v := range positional {
			switch i {
			case 0:
				cfg.Width = v
			case 1:
				cfg.Height = v
			case 2:
				cfg.Columns = v
			}
		}
	default:
		return cfg, fmt.Errorf("第 %d 行: 未知的 geometry 类型 %q（支持 preset/custom）", sec.Pos.Line, sec.Kind)
	}
	if _, err := Resolve(cfg); err != nil {
		return cfg, fmt.Errorf("第 %d 行: %w", sec.Pos.Line, err)
	}
	return cfg, nil
}

func setCustomField(cfg *GeometryConfig, key, value string) {
	switch key {
	case "width":
		cfg.Width = value
	case "height":
		cfg.Height = value
	case "columns":
		cfg.Columns = value
	}
}

func compileOptions(block *dsl.Block) (RenderOptions, error) {
	var ro RenderOptions
	if block == nil {
		return ro, nil
	}
	for _, st := range block.Statements {
		a := st.Assignment
		if a == nil {
			continue
		}
		switch a.Key {
		case "symbology":
			ro.Symbology = strings.ToLower(a.Value.Text())
		case "caption":
			b, err := a.Value.Bool()
			if err != nil {
				return ro, fmt.Errorf("第 %d 行: caption: %w", a.Pos.Line, err)
			}
			ro.ShowCaption = &b
		case "supersample":
			n, err := strconv.Atoi(a.Value.Text())
			if err != nil || n < 2 {
				return ro, fmt.Errorf("第 %d 行: supersample 必须是 ≥ 2 的整数，实际 %q", a.Pos.Line, a.Value.Text())
			}
			ro.Supersample = n
		case "viewport":
			px, err := strconv.ParseFloat(strings.TrimSuffix(a.Value.Text(), "px"), 64)
			if err != nil || px <= 0 {
				return ro, fmt.Errorf("第 %d 行: viewport 必须是正数，实际 %q", a.Pos.Line, a.Value.Text())
			}
			ro.ViewportPx = px
		default:
			return ro, fmt.Errorf("第 %d 行: 未知的选项 %q", a.Pos.Line, a.Key)
		}
	}
	return ro, nil
}

func compileEntries(block *dsl.Block, opts CompileOptions) ([]pendingEntry, error) {
	if block == nil {
		return nil, nil
	}
	var out []pendingEntry
	for _, st := range block.Statements {
		switch {
		case st.Literal != nil:
			e := Entry{Code: string(st.Literal.Code)}
			if st.Literal.Caption != nil {
				e.Caption = string(*st.Literal.Caption)
			}
			if strings.TrimSpace(e.Code) == "" {
				return nil, fmt.Errorf("第 %d 行: 条码内容为空", st.Literal.Pos.Line)
			}
			out = append(out, pendingEntry{Entry: e, n: strconv.Itoa(len(out) + 1)})
		case st.Command != nil:
			items, err := compileEntryCommand(st.Command, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		case st.Assignment != nil:
			return nil, fmt.Errorf("第 %d 行: entries 中不支持赋值 %q", st.Assignment.Pos.Line, st.Assignment.Key)
		}
	}
	return out, nil
}

// splitCaption 将 `... caption "模板"` 从参数列表中拆出。
func splitCaption(args []*dsl.Arg) ([]string, string, bool) {
	var rest []string
	caption, has := "", false
	for i := 0; i < len(args); i++ {
		if args[i].IsIdent() && strings.EqualFold(args[i].Text(), "caption") && i+1 < len(args) {
			caption, has = args[i+1].Text(), true
			i++
			continue
		}
		rest = append(rest, args[i].Text())
	}
	return rest, caption, has
}

func compileEntryCommand(cmd *dsl.Command, opts CompileOptions) ([]pendingEntry, error) {
	args, caption, hasCaption := splitCaption(cmd.Args)
	switch strings.ToLower(cmd.Name) {
	case "entry":
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return nil, fmt.Errorf("第 %d 行: entry 缺少条码内容", cmd.Pos.Line)
		}
		e := Entry{Code: args[0]}
		if len(args) > 1 {
			e.Caption = args[1]
		}
		if hasCaption {
			e.Caption = caption
		}
		return []pendingEntry{{Entry: e, n: "1"}}, nil
	case "range":
		if opts.Entries == nil {
			return nil, fmt.Errorf("第 %d 行: range 需要 EntrySource", cmd.Pos.Line)
		}
		var prefix, start, end string
		switch len(args) {
		case 2:
			start, end = args[0], args[1]
		case 3:
			prefix, start, end = args[0], args[1], args[2]
		default:
			return nil, fmt.Errorf("第 %d 行: range 用法为 range [前缀] 起始 结束", cmd.Pos.Line)
		}
		entries, err := opts.Entries.Range(prefix, start, end)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", cmd.Pos.Line, err)
		}
		out := make([]pendingEntry, len(entries))
		for i, e := range entries {
			if hasCaption {
				e.Caption = caption
			}
			out[i] = pendingEntry{Entry: e, n: strings.TrimPrefix(e.Code, prefix)}
		}
		return out, nil
	case "csv":
		if opts.Entries == nil {
			return nil, fmt.Errorf("第 %d 行: csv 需要 EntrySource", cmd.Pos.Line)
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("第 %d 行: csv 用法为 csv \"文件路径\"", cmd.Pos.Line)
		}
		entries, err := opts.Entries.LoadCSV(args[0])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", cmd.Pos.Line, err)
		}
		out := make([]pendingEntry, len(entries))
		for i, e := range entries {
			if hasCaption {
				e.Caption = caption
			}
			out[i] = pendingEntry{Entry: e, n: strconv.Itoa(i + 1)}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("第 %d 行: entries 中未知的命令 %q", cmd.Pos.Line, cmd.Name)
	}
}
