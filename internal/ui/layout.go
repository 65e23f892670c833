package ui

import (
	"encoding/json"
	"strings"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "By year", Href: "/ui", Key: "year"},
	{Label: "By indicator", Href: "/ui/indicator", Key: "indicator"},
}

func pageHead(title string) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title+" | Socioeconomic Dashboard")),
		Link(Rel("icon"), Href("data:,")),
		Link(Rel("stylesheet"), Href("/ui/static/app.css")),
		Script(
			Type("module"),
			Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
		),
	)
}

func appPage(title, active string, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return HTML(
		Lang("en"),
		pageHead(title),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Strong(Text("Socioeconomic Dashboard")),
					P(Class(mutedClass()), Text("Demographics, economy and health spending")),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					H1(Class("page-title"), Text(title)),
					Group(body),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		pageHead(title),
		Body(
			Main(
				Class("app-main"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/ui"), Text("Back to the dashboard"))),
			),
		),
	)
}

func cardClass(extra ...string) string {
	return strings.Join(append([]string{"card"}, extra...), " ")
}

func mutedClass() string {
	return "muted"
}

// containsExpr is a datastar expression that is true when the quick filter
// signal $q is empty or a substring of value.
func containsExpr(value string) string {
	// A JSON string is a valid JS string literal.
	lit, _ := json.Marshal(strings.ToLower(value))
	return "$q === '' || " + string(lit) + ".includes($q.toLowerCase())"
}

func quickFilterCard(placeholder string) Node {
	return Div(
		Class(cardClass("toolbar")),
		Label(Class("sr-only"), Text("Quick filter")),
		Input(Type("search"), Class("form-control"), Placeholder(placeholder), data.Bind("q"), AutoComplete("off")),
	)
}

func emptyStateCard(message string) Node {
	return Div(Class(cardClass("blankslate")), P(Class(mutedClass()), Text(message)))
}

// selectionForm submits itself on every change so each control change is a
// fresh request.
func selectionForm(action string, controls ...Node) Node {
	return Div(
		Class(cardClass("toolbar")),
		Form(
			Method("get"),
			Action(action),
			Attr("onchange", "this.requestSubmit()"),
			Group(controls),
			Button(Type("submit"), Class("btn"), Text("Update")),
		),
	)
}

func selectControl(label, name, selected string, options [][2]string) Node {
	opts := make([]Node, 0, len(options))
	for _, o := range options {
		opts = append(opts, Option(Value(o[0]), If(o[0] == selected, Selected()), Text(o[1])))
	}
	return Label(Text(label), Select(Name(name), Class("form-control"), Group(opts)))
}
