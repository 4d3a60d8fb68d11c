package display

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

var templateFuncs = template.FuncMap{
	"wrap":       WrapWidth,
	"capitalize": Capitalize,
}

func init() {
	for k, v := range sprig.TxtFuncMap() {
		if _, ok := templateFuncs[k]; !ok {
			templateFuncs[k] = v
		}
	}
}

const headerTmpl = `{{ .Base.DisplayName }} ({{ .Kind | toString | capitalize }}, {{ .Base.TypeCode }})
{{- if ne .Base.DisplayName .Base.ID }}
  id: {{ .Base.ID }}{{ end }}
{{- with .Base.Class }}
  class: {{ . }}{{ end }}
{{- with .Texture }}
  texture: {{ . }}{{ end }}`

const equipmentTmpl = `
  tier: {{ .Obj.TierLabel }}  slot: {{ .Obj.SlotType }}  bag: {{ .Obj.BagType }}
{{- if .Obj.Soulbound }}
  soulbound{{ end }}
{{- if .Obj.Consumable }}
  consumable{{ end }}
{{- range .Obj.Projectiles }}
  shoots {{ .ObjectID }} for {{ .MinDamage }}-{{ .MaxDamage }} at speed {{ .Speed }}{{ end }}
{{- range .Obj.Bonuses }}
  {{ printf "%+d" .Amount }} {{ .Stat }}{{ end }}`

const playerTmpl = `
  hp: {{ .Obj.MaxHitPoints.Base }}/{{ .Obj.MaxHitPoints.Max }}  mp: {{ .Obj.MaxMagicPoints.Base }}/{{ .Obj.MaxMagicPoints.Max }}
  att: {{ .Obj.Attack.Base }}/{{ .Obj.Attack.Max }}  def: {{ .Obj.Defense.Base }}/{{ .Obj.Defense.Max }}
  slots: {{ .Obj.SlotTypes | join ", " }}`

const descriptionTmpl = `
{{- with .Base.Description }}

{{ wrap . $.Width | indent 2 }}{{ end }}`

var describeTmpl = template.Must(template.New("describe").Funcs(templateFuncs).Parse(
	headerTmpl +
		`{{ if eq .Kind.String "equipment" }}` + equipmentTmpl + `{{ end }}` +
		`{{ if eq .Kind.String "player" }}` + playerTmpl + `{{ end }}` +
		descriptionTmpl,
))

type describeData struct {
	Obj     rotmg.Object
	Base    *rotmg.XMLObject
	Kind    rotmg.Kind
	Texture string
	Width   int
}

// Describe renders a multi-line summary of an object definition, with its
// description wrapped to width.
func Describe(o rotmg.Object, width int) (string, error) {
	data := describeData{
		Obj:   o,
		Base:  o.Base(),
		Kind:  o.Kind(),
		Width: width - 2,
	}
	if key, ok := o.Base().TextureKey(); ok {
		data.Texture = key
	}

	var buf bytes.Buffer
	if err := describeTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("describing %q: %w", o.Base().ID, err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// Summary renders an object on a single line.
func Summary(o rotmg.Object) string {
	b := o.Base()
	if e, ok := o.(*rotmg.Equipment); ok {
		return fmt.Sprintf("%-8s %-32s %s", b.TypeCode(), b.DisplayName(), e.TierLabel())
	}
	return fmt.Sprintf("%-8s %-32s %s", b.TypeCode(), b.DisplayName(), o.Kind())
}
