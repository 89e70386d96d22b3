package editor

// SuggestedKinks is the fixed suggestion list rendered by the editor.
// The entries are product copy; the editor treats them as opaque tags.
var SuggestedKinks = []string{
	"施虐倾向(S)",
	"受虐倾向(M)",
	"支配方(D)",
	"顺从方(s)",
	"切换者(Switch)",
	"捆绑",
	"角色扮演",
	"主奴",
	"调教",
	"打屁股",
	"轻度羞辱",
	"温柔爱抚",
	"挑逗",
	"足控",
	"制服诱惑",
	"情趣内衣",
	"Cosplay",
	"震动玩具",
	"肢体按摩",
	"亲吻增强",
	"触摸敏感区",
}
