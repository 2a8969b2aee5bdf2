package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("delphi_discover",
			mcp.WithDescription("Find the Delphi UI bridge by scanning local listening ports. Use after the application restarts or when other tools report the bridge unavailable."),
			mcp.WithString("process", mcp.Description("Only probe ports owned by a process whose name contains this (e.g. 'FineAid')")),
		),
		s.handleDiscover,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_forms",
			mcp.WithDescription("List the open top-level Delphi forms with their window handles and titles"),
		),
		s.handleForms,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_activeform",
			mcp.WithDescription(`List interactive controls on the active Delphi form, including non-windowed VCL controls.
Returns only actionable controls by default; labels, layout containers and inner parts of composite controls are filtered out.
Also reports native Win32 dialogs (MessageBox, Open/Save) the bridge cannot see. If "native_dialogs" is present, dismiss them first.`),
			mcp.WithBoolean("include_hidden", mcp.Description("Include invisible controls")),
			mcp.WithBoolean("include_labels", mcp.Description("Include read-only labels (TLabel, TcxLabel)")),
			mcp.WithBoolean("include_containers", mcp.Description("Include layout containers (TPanel, TScrollBox, ...)")),
		),
		s.handleActiveForm,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_find",
			mcp.WithDescription("Find controls by automation id (component Name) and/or caption. Matches are exact."),
			mcp.WithString("auto_id", mcp.Description("Component Name, e.g. 'Btn_Login'")),
			mcp.WithString("caption", mcp.Description("Caption text, e.g. 'OK'")),
			mcp.WithString("scope", mcp.Description("active-form (default) or global; global searches every form")),
			mcp.WithBoolean("all", mcp.Description("Return every match instead of the first")),
		),
		s.handleFind,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_click",
			mcp.WithDescription("Click a control by automation id or caption. Falls back to native child windows by caption when the bridge is unavailable."),
			mcp.WithString("auto_id", mcp.Description("Component Name")),
			mcp.WithString("caption", mcp.Description("Caption text")),
			mcp.WithString("anchor", mcp.Description("Where to click: center (default), left, right, top, bottom. Use right to open dropdown editors.")),
			mcp.WithString("window_title", mcp.Description("Owning form title (default: foreground window)")),
			mcp.WithString("scope", mcp.Description("active-form (default) or global")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_set_text",
			mcp.WithDescription("Replace a control's text: click to focus, select all, delete, type. With direct=true sends WM_SETTEXT instead, which composite (DevExpress) editors may ignore."),
			mcp.WithString("auto_id", mcp.Description("Component Name")),
			mcp.WithString("caption", mcp.Description("Caption text")),
			mcp.WithString("text", mcp.Description("Text to enter"), mcp.Required()),
			mcp.WithString("window_title", mcp.Description("Owning form title (default: foreground window)")),
			mcp.WithString("scope", mcp.Description("active-form (default) or global")),
			mcp.WithBoolean("direct", mcp.Description("Write the native text buffer directly (windowed controls only)")),
		),
		s.handleSetText,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_batch",
			mcp.WithDescription(`Execute several operations in one call; stops on the first error.
Each step: {op: click|set_text|wait, id?: component Name, title?: caption, text?: value for set_text, anchor?: center|left|right|top|bottom, wait?: seconds to pause after the step (default 0.1)}.
Example: [{"op":"set_text","id":"TE_Username","text":"admin"},{"op":"click","id":"Btn_Login"}]`),
			mcp.WithArray("steps", mcp.Description("Array of step objects"), mcp.Required()),
			mcp.WithString("window_title", mcp.Description("Owning form title (default: foreground window)")),
			mcp.WithBoolean("active_form_only", mcp.Description("Restrict lookups to the active form (default true)")),
			mcp.WithBoolean("report_changes", mcp.Description("Diff the active form before and after the batch and report what changed")),
		),
		s.handleBatch,
	)

	s.mcp.AddTool(
		mcp.NewTool("native_dialogs",
			mcp.WithDescription("List native Win32 dialogs (#32770) owned by the foreground application, with their buttons, edits and text"),
		),
		s.handleDialogs,
	)

	s.mcp.AddTool(
		mcp.NewTool("delphi_layout",
			mcp.WithDescription("Draw a wireframe PNG of a form's control layout from bridge coordinates. Blue boxes have a window handle, red boxes exist only in the bridge."),
			mcp.WithNumber("form", mcp.Description("Form handle from delphi_forms (default: active form)")),
			mcp.WithString("labels", mcp.Description("names (default), coords (screen click points), or none")),
			mcp.WithNumber("scale", mcp.Description("Scale factor (default 1)")),
			mcp.WithBoolean("include_hidden", mcp.Description("Draw invisible controls")),
		),
		s.handleLayout,
	)
}
