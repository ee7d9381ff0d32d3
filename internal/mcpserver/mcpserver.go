// Package mcpserver exposes the converter as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/413232903/markdown2word-mcp/internal/convert"
)

const (
	serverName    = "md2doc"
	serverVersion = "1.0.0"
)

// Tool argument keys, shared by the schemas and the handlers.
const (
	argContent = "markdown_content"
	argPath    = "markdown_file_path"
)

// Tools holds what the tool handlers need.
type Tools struct {
	conv    *convert.Converter
	baseURL string
	log     *slog.Logger
}

func NewTools(conv *convert.Converter, baseURL string, log *slog.Logger) *Tools {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Tools{conv: conv, baseURL: baseURL, log: log}
}

// New builds an MCP server with every tool registered.
func New(t *Tools) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	t.Register(s)
	return s
}

// Register binds the tool definitions to their handlers.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("convert_markdown_text",
			mcp.WithDescription("将 Markdown 文本内容转换为 Word 文档。支持标题、段落、表格、ECharts 图表、图片等元素。返回可下载的 Word 文档链接"),
			mcp.WithString(argContent,
				mcp.Required(),
				mcp.Description("要转换的 Markdown 文本内容"),
			),
		),
		t.ConvertText,
	)

	s.AddTool(
		mcp.NewTool("convert_markdown_file",
			mcp.WithDescription("将指定路径的 Markdown 文件转换为 Word 文档。文件路径必须是绝对路径。返回可下载的 Word 文档链接"),
			mcp.WithString(argPath,
				mcp.Required(),
				mcp.Description("Markdown 文件的完整路径(绝对路径)"),
			),
		),
		t.ConvertFile,
	)

	s.AddTool(
		mcp.NewTool("get_supported_features",
			mcp.WithDescription("获取 md2doc 支持的 Markdown 特性列表、使用说明和示例"),
		),
		t.Features,
	)
}

func (t *Tools) ConvertText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, _ := req.Params.Arguments[argContent].(string)
	res, err := t.conv.Convert(ctx, convert.Request{Markdown: []byte(content)})
	if err != nil {
		return t.failed(err), nil
	}
	return mcp.NewToolResultText(convert.DownloadURL(t.baseURL, res.FileName)), nil
}

func (t *Tools) ConvertFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _ := req.Params.Arguments[argPath].(string)
	if path == "" {
		return mcp.NewToolResultError(argPath + " is required"), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return mcp.NewToolResultError("错误：文件不存在 - " + path), nil
	}

	if err := os.MkdirAll(t.conv.OutputDir(), 0o755); err != nil {
		return t.failed(err), nil
	}
	out := filepath.Join(t.conv.OutputDir(), uuid.NewString()+".docx")
	res, err := t.conv.ConvertFile(ctx, path, out, convert.Request{})
	if err != nil {
		return t.failed(err), nil
	}
	return mcp.NewToolResultText(convert.DownloadURL(t.baseURL, res.FileName)), nil
}

func (t *Tools) failed(err error) *mcp.CallToolResult {
	t.log.Warn("mcp conversion failed", "error", err)
	return mcp.NewToolResultError("错误：转换失败 - " + err.Error())
}

// Features lists what the converter understands, with examples.
type Features struct {
	Features     []string `json:"features"`
	ChartExample string   `json:"chartExample"`
	TableExample string   `json:"tableExample"`
	ImageExample string   `json:"imageExample"`
}

var supported = Features{
	Features: []string{
		"1. 六级标题 (H1-H6) - 自动添加序号和格式化",
		"2. 段落文本 - 普通文本段落,支持粗体、斜体和行内代码",
		"3. Markdown 表格 - 标准表格语法,数字自动格式化",
		"4. ECharts 图表 - 使用 ```echarts 代码块,支持柱状图、折线图、饼图,生成可编辑的 Word 原生图表",
		"5. 图片 - 支持 HTTP/HTTPS URL 和本地文件路径,自适应页面宽度",
		"6. 有序/无序列表 - 支持多级嵌套",
		"7. Mermaid 代码块 - 保留原始代码",
		"8. 标题自动编号 - 如 一、 1、 1） 等",
	},
	ChartExample: strings.Join([]string{
		"```echarts",
		"{",
		`  "title": {"text": "示例图表"},`,
		`  "xAxis": {"data": ["A", "B", "C"]},`,
		`  "yAxis": {},`,
		`  "series": [{"type": "bar", "data": [10, 20, 30]}]`,
		"}",
		"```",
	}, "\n"),
	TableExample: "| 列1 | 列2 |\n|-----|-----|\n| 值1 | 值2 |",
	ImageExample: "![图片描述](https://example.com/image.png)",
}

func (t *Tools) Features(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(supported, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func ServeStdio(t *Tools) error {
	return server.ServeStdio(New(t))
}
