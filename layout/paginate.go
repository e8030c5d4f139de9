package layout

// PageCount 返回 n 个标签按 columns 列排布所需的页（行）数，即 ceil(n/columns)。
func PageCount(n, columns int) int {
	if n <= 0 {
		return 0
	}
	if columns < 1 {
		columns = 1
	}
	return (n + columns - 1) / columns
}

// Paginate 将渲染结果按列数切分为连续的页，最后一页可能不满。
// 第 i 页包含 rendered[i*columns : (i+1)*columns]，不修改入参。
func Paginate(rendered []RenderedBarcode, g Geometry) []Page {
	columns := g.Columns
	if columns < 1 {
		columns = 1
	}
	count := PageCount(len(rendered), columns)
	pages := make([]Page, 0, count)
	for i := 0; i < count; i++ {
		start := i * columns
		end := min(start+columns, len(rendered))
		labels := make([]RenderedBarcode, end-start)
		copy(labels, rendered[start:end])
		pages = append(pages, Page{Index: i, Labels: labels})
	}
	return pages
}
