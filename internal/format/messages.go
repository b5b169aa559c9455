package format

import "strings"

// Fixed chat replies
const (
	Welcome = "歡迎使用教會行事曆機器人！🙏\n" +
		"輸入「幫助」查看可用指令。\n" +
		"Welcome to the church calendar bot! Type \"help\" for commands."

	GroupWelcome = "大家好！我是教會行事曆機器人 📅\n" +
		"我會在這個群組發送活動提醒。輸入「幫助」查看可用指令。\n" +
		"Hi! I will post activity reminders here. Type \"help\" for commands."

	Duplicate = "此日期和活動名稱已存在，請使用不同的組合。\n" +
		"An activity with this name already exists on that date."

	NotFound = "找不到指定的活動。\nActivity not found."

	GenericFailure = "系統忙碌中，請稍後再試。\nSomething went wrong, please try again later."
)

// FetchFailure is the reply when a listing cannot be loaded
func FetchFailure(title string) string {
	return "無法取得" + title + "，請稍後再試。\nCould not load activities, please try again later."
}

// Forbidden is the reply to a mutating command from a non-admin
func Forbidden(action string) string {
	return "抱歉，您沒有權限執行此操作。\n" +
		"Sorry, you are not authorized to " + action + " activities. Contact the administrator."
}

// Help renders the command list; admins also see management commands
func Help(admin bool) string {
	var b strings.Builder
	b.WriteString("📖 可用指令 Commands：\n")
	b.WriteString("• 查看 全部 / list：所有活動\n")
	b.WriteString("• 查看 本月：本月活動\n")
	b.WriteString("• 查看 下個月：下個月活動\n")
	b.WriteString("• 查看 本週：本週活動\n")
	b.WriteString("• 查看 下周：下周活動\n")
	b.WriteString("• 查看 11月 [2025]：指定月份活動\n")
	b.WriteString("• 幫助 / help：顯示此說明\n")
	if admin {
		b.WriteString("\n🔧 管理指令 Admin：\n")
		b.WriteString("• 查看 id：列出活動與 ID\n")
		b.WriteString("• 新增 [日期] [活動名稱]\n")
		b.WriteString("• 新增 [日期] [開始時間-結束時間] [活動名稱]\n")
		b.WriteString("• 更新 [ID] 名稱|時間|日期 [新值]\n")
		b.WriteString("• 刪除 [ID]\n")
	}
	b.WriteString("\n更多功能即將推出！")
	return b.String()
}
