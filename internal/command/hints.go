package command

// Usage hints returned inside Malformed commands
const (
	HintCreateUsage = "格式錯誤。請使用：\n" +
		"• 新增 [日期] [活動名稱]\n" +
		"• 新增 [日期] [開始時間-結束時間] [活動名稱]\n" +
		"例如：新增 2025-01-15 09:00-11:00 主日崇拜\n" +
		"Usage: add [YYYY-MM-DD] [HH:MM-HH:MM] [name]"

	HintUpdateUsage = "格式錯誤。請使用：\n" +
		"• 更新 [ID] 名稱 [新名稱]\n" +
		"• 更新 [ID] 時間 [開始時間-結束時間]\n" +
		"• 更新 [ID] 日期 [YYYY-MM-DD]\n" +
		"例如：更新 17 名稱 教導站桌遊活動\n" +
		"Usage: update [id] name|time|date [value]"

	HintDeleteUsage = "格式錯誤。請使用：刪除 [ID]\n" +
		"例如：刪除 1\n" +
		"Usage: delete [id]"

	HintInvalidID = "ID 必須是正整數。\nThe id must be a positive number."

	HintDateFormat = "日期格式錯誤。請使用 YYYY-MM-DD，例如：2025-01-15\n" +
		"Invalid date, use YYYY-MM-DD."

	HintTimeFormat = "時間格式錯誤。請使用 HH:MM-HH:MM，例如：19:00-21:00\n" +
		"Invalid time range, use HH:MM-HH:MM."

	HintTimeOrder = "開始時間必須早於結束時間。\nThe start time must be before the end time."

	HintUpdateField = "更新類型錯誤。請使用：名稱、時間 或 日期\n" +
		"Unknown field, use name, time or date."

	HintMonthFormat = "月份格式錯誤。請使用：查看 11月 或 查看 十一月\n" +
		"Invalid month, e.g. 查看 11月 2025."
)
