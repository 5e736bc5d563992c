package constants

import "time"

const (
	// Commands.
	RepCommandName         = "rep"
	NoRepCommandName       = "norep"
	SetRepCommandName      = "setrep"
	RateCommandName        = "rate"
	CheckRepCommandName    = "checkrep"
	LeaderboardCommandName = "leaderboard"
	BackupRepCommandName   = "backuprep"
	ImportRepCommandName   = "importrep"

	// Command options.
	MemberOptionName = "member"
	AmountOptionName = "amount"
	StarsOptionName  = "stars"
	PeriodOptionName = "period"
	FileOptionName   = "file"

	// Common.
	NotApplicable     = "N/A"
	DefaultEmbedColor = 0x312D2B
	RequestTimeout    = 15 * time.Second

	// Leaderboard Menu.
	LeaderboardCustomIDPrefix = "leaderboard"
	CustomIDSeparator         = ":"

	// Backup.
	BackupFileName     = "rep_data.json"
	MaxImportFileBytes = 8 << 20
)
