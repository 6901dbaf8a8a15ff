package collector

import (
	"fmt"
	"strings"
	"time"
)

// PromptDates carries the formatted dates every prompt interpolates.
type PromptDates struct {
	Today     string // 2006年01月02日
	Yesterday string
	DateStr   string // 2006-01-02
}

func NewPromptDates(now time.Time) PromptDates {
	const jpLayout = "2006年01月02日"
	return PromptDates{
		Today:     now.Format(jpLayout),
		Yesterday: now.AddDate(0, 0, -1).Format(jpLayout),
		DateStr:   now.Format("2006-01-02"),
	}
}

// candidatePrompt asks for 10-15 numbered entries in the exact line format
// the markdown normalizer parses. Keep the format block in sync with the
// normalize package.
func candidatePrompt(d PromptDates, boosted, suppressed []string) string {
	var boostSection string
	if len(boosted) > 0 {
		boostSection = fmt.Sprintf("\n🔥 **特に優先**: %s", strings.Join(boosted, ", "))
	}
	var suppressSection string
	if len(suppressed) > 0 {
		suppressSection = fmt.Sprintf("\n⬇️ **優先度下げる**: %s", strings.Join(suppressed, ", "))
	}

	return fmt.Sprintf(`今日は%sです。ニュース候補を10〜15件収集してください。

【重要な制約】
- 日本とアメリカのニュースソースのみ
- %s〜%sに公開された記事のみ
%s%s

【収集対象】
- AI開発ツール（Gemini, Claude, ChatGPT, Cursor等）の新機能・アップデート
- LLM/機械学習の技術トレンド
- 開発者向けの重要な発表

【出力フォーマット】
必ず以下の形式で10〜15件出力してください：

1. [記事タイトル（英語なら日本語訳）]
   📰 [サイト名] | 💡 [一言メモ（20字以内）]
   URL: [記事URL]

2. [記事タイトル]
   📰 [サイト名] | 💡 [一言メモ]
   URL: [記事URL]

... (10〜15件まで)

該当期間にニュースが見つからない場合は「該当なし」と記載してください。`,
		d.Today, d.Yesterday, d.Today, boostSection, suppressSection)
}

func aiPrompt(d PromptDates) string {
	return fmt.Sprintf(`今日は%sです。あなたはAI開発ツール専門のテクニカルニュースキュレーターです。

【重要な制約】
- **日本とアメリカのニュースソースのみを対象としてください**
- 必ず%s〜%sに公開された記事のみを含めてください
- 記事のURLや本文に含まれる日付を確認し、それ以前の古い記事は絶対に含めないでください
- 該当期間のニュースが見つからない場合は、無理に古い記事を含めず「該当なし」としてください

【収集対象】
AI開発ツール（Gemini, Claude, ChatGPT, Cursor, GitHub Copilot等）の
**技術的なリリース・アップデート情報**を収集してください。

【優先するコンテンツ】
✅ 新機能・新スキルのリリース発表
✅ バージョンアップ・チェンジログ
✅ 新API・SDK・ライブラリの公開
✅ 公式ブログ・GitHubリリースノート

【除外するコンテンツ】
❌ 経営戦略・資金調達・人事ニュース
❌ AIリスク・規制・倫理に関する意見記事
❌ 噂・リーク情報

【出力要件】
- 合計5〜7件程度に厳選
- 各ニュースには**何が新しくなったか**を具体的に記載
- 出力は日本語で統一

【出力フォーマット】
---
## [ツール/プラットフォーム名]

### [リリース・アップデート内容]
公開日: YYYY-MM-DD
[何が新しくなったかを1〜2行で具体的に説明]
→ [ソースURL]

---

該当期間に技術的なリリース情報がない場合は「本日の主要なリリース情報はありませんでした」と記載してください。`,
		d.Today, d.Yesterday, d.Today)
}

func politicsPrompt(d PromptDates) string {
	return fmt.Sprintf(`今日は%sです。あなたは政治経済専門のニュースキュレーターです。

【重要な制約】
- **日本とアメリカのニュースソースのみを対象としてください**
- 必ず%s〜%sに公開された記事のみを含めてください
- 該当期間のニュースが見つからない場合は「該当なし」としてください

【収集対象】
- 日本国内政治（国会、内閣、政策決定、選挙）
- アメリカ政治（ホワイトハウス、議会、大統領令）
- マクロ経済（GDP、金利、為替、株式市場の重要な動き）
- 中央銀行政策（日銀、FRB の政策決定）
- 貿易・通商、重要な外交ニュース

【除外するコンテンツ】
❌ ゴシップ・スキャンダル
❌ 憶測・予測記事
❌ ローカルニュース

【出力要件】
- 合計5〜7件程度に厳選
- 各ニュースには何が決まったか/起きたかを具体的に記載
- 出力は日本語で統一

【出力フォーマット】
---
## [カテゴリ: 国内政治/米国政治/経済/金融政策/外交]

### [ニュースタイトル]
日付: YYYY-MM-DD
[何が起きたかを1〜2行で具体的に説明]
→ [ソースURL]

---

該当期間に重要なニュースがない場合は「本日の主要なニュースはありませんでした」と記載してください。`,
		d.Today, d.Yesterday, d.Today)
}

func papersPrompt(d PromptDates) string {
	return fmt.Sprintf(`今日は%sです。あなたはAI研究論文のキュレーターです。

【収集対象】
過去1週間に発表された重要なAI/ML論文を検索してください：
- arXiv（cs.AI, cs.LG, cs.CL, cs.CV）
- 主要学会（NeurIPS, ICML, ICLR, ACL, EMNLP, CVPR）のプレプリント
- Google Research, DeepMind, OpenAI, Anthropic, Meta AI等の公式発表

【優先トピック】
- LLM / Foundation Models、Agent / Tool Use、Code Generation
- Reasoning、Multimodal、Efficient AI

【出力要件】
- 5〜10件程度を厳選、重要度の高いものから順に
- 出力は日本語で統一

【出力フォーマット】
---
## [論文タイトル]
**日本語タイトル**: [日本語訳]
**著者**: [主要著者名（所属）]
**発表日**: YYYY-MM-DD
**重要度**: ★★★ / ★★ / ★

### 概要
[論文の主な貢献を2〜3文で説明]

### 注目ポイント
[なぜ重要か、実務への影響を1〜2文で]

→ [arXiv/論文URL]

---

該当期間に重要な論文がない場合は「今週の注目論文はありませんでした」と記載してください。`,
		d.Today)
}

func serendipityPrompt(d PromptDates) string {
	return fmt.Sprintf(`今日は%sです。あなたは「フィルターバブル破壊」専門のニュースキュレーターです。

【ミッション】
テクノロジーや経済に関心が強い読者に、普段触れない分野の興味深いニュースを届けてください。

【収集対象（ランダムに選択）】
以下の分野から、%s〜%sの興味深いニュースを探してください：
- 科学・自然（宇宙探査、生物学、物理学、気候変動）
- 歴史・考古学（新しい考古学的発見、歴史的文書の解読）
- 芸術・文化（美術展、建築、文学賞、映画祭）
- 心理学・哲学（認知科学、社会心理学）
- 国際・社会（途上国の発展、教育・医療の革新）

【除外するコンテンツ】
❌ 芸能ゴシップ、スポーツの試合結果、犯罪・事件報道
❌ AI・テクノロジー関連（他カテゴリで収集済み）
❌ 政治・経済ニュース（他カテゴリで収集済み）

【出力要件】
- 3〜5件を厳選、「へぇ、そうなんだ」と思える意外性のあるものを優先
- 出力は日本語で統一

【出力フォーマット】
---
## [分野: 科学/歴史/芸術/心理学/国際]

### [ニュースタイトル]
日付: YYYY-MM-DD
[何が発見・発表されたかを1〜2行で具体的に説明]

なぜ面白いか: [この発見/ニュースの意外性や興味深さを1文で]

→ [ソースURL]

---

該当期間に興味深いニュースがない場合は「今回のセレンディピティニュースはありませんでした」と記載してください。`,
		d.Today, d.Yesterday, d.Today)
}

func scriptPrompt(newsContent string) string {
	return fmt.Sprintf(`# 役割
あなたは朝のAIニュース番組の原稿ライターです。視聴者にわかりやすく、親しみやすいトーンでAI業界の最新ニュースを伝える原稿を作成してください。

# 入力
以下のニュースネタから原稿を作成してください：

%s

# 出力形式
## 1. オープニング（2〜3文）
- 「おはようございます」から始める挨拶
- 本日のニュースの概要を軽く予告

## 2. ニュース本文（ネタごとに1セクション）
- **見出し**：【ニュース①：〇〇】の形式
- **導入**：話題の切り替えを示す短いつなぎ
- **本文**：何が起きたか、背景、意義を3〜4段落で
- 専門用語は簡潔に補足説明を入れる
- 金額は日本円換算も併記（概算でOK）

## 3. クロージング（2〜3文）
- ニュース全体の簡単なまとめとポジティブな締めくくり

# トーン・文体ガイドライン
- 親しみやすく、堅すぎない敬体（です・ます調）
- 読み上げやすいリズム感を意識
- 絵文字は使用しない

# 注意事項
- ネタの順番は重要度や話題のつながりで並び替えてOK
- URLは原稿内に含めない（読み上げ用のため）
- 1ニュースあたり150〜200文字程度を目安に`, newsContent)
}
