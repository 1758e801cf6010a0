package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconCart    = "\U000F0110"
	IconPin     = "\U000F0403"
	IconCheck   = ""
	IconCross   = ""
	IconWarning = ""
	IconStore   = "\U000F04EE"
)
