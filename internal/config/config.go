package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Age/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Age"
	AppID             = "com.github.tartampluch.go-age"
	KeyringService    = "com.github.tartampluch.go-age"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagBirth        = "birth"
	FlagLang         = "lang"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescBirth    = "Print the age for this birth date (YYYY-MM-DD) and exit without a window"
	FlagDescLang     = "Language used to format numbers in headless mode"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Age Arithmetic
// -----------------------------------------------------------------------------

const (
	MonthsPerYear  = 12
	HoursPerDay    = 24
	MinutesPerHour = 60
	SecondsPerHour = 60 * MinutesPerHour
	SecondsPerDay  = HoursPerDay * SecondsPerHour

	// Fun fact rates.
	HeartbeatsPerMinute = 80
	BreathsPerMinute    = 16
	StepsPerDay         = 8000

	// MilestoneDayStep is the spacing of "days alive" milestones (10,000 days...).
	MilestoneDayStep = 1000
)

// -----------------------------------------------------------------------------
// Presentation Timing
// -----------------------------------------------------------------------------

const (
	// RevealStagger separates consecutive result fields when they appear.
	RevealStagger = 200 * time.Millisecond
	// CountDuration is how long a single number takes to count up.
	CountDuration = 1000 * time.Millisecond
	// CountTick is the refresh period of the counting animation (~60 fps).
	CountTick = 16 * time.Millisecond
	// CalculateDelay keeps the "Calculating..." state visible.
	CalculateDelay = 800 * time.Millisecond
	// ToastDuration is the lifetime of an error toast.
	ToastDuration = 5 * time.Second
)

// Result fields, in reveal order.
const (
	FieldAge        = "age"
	FieldYears      = "years"
	FieldMonths     = "months"
	FieldDays       = "days"
	FieldHours      = "hours"
	FieldHeartbeats = "heartbeats"
	FieldBreaths    = "breaths"
	FieldSteps      = "steps"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600
	CalcWinWidth        = 420
	CalcWinHeight       = 560

	// Preference Keys
	PrefCardDAVURL   = "carddav_url"
	PrefUsername     = "username"
	PrefLanguage     = "language"
	PrefInterval     = "refresh_interval_min"
	PrefServerPort   = "server_port"
	PrefSourceMode   = "source_mode"
	PrefLocalPath    = "local_path"
	PrefReminderDays = "reminder_days"
	PrefLastRun      = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// UI Contacts Window Constants
// -----------------------------------------------------------------------------

const (
	ContactsWinWidth  = 720
	ContactsWinHeight = 420

	// Table Column IDs
	ColIDName      = 0
	ColIDAge       = 1
	ColIDDays      = 2
	ColIDMilestone = 3
	ColCount       = 4

	// Table Layout
	ColWidthName      = 230
	ColWidthAge       = 170
	ColWidthDays      = 110
	ColWidthMilestone = 190

	DateFormatDisplay   = "2006-01-02"
	TablePlaceholder    = "Cell Content"
	HeaderPlaceholder   = "Header"
	FormatMilestoneCell = "%s (%s)" // Days, Date
	AgeUnknown          = "-"
	LogMsgOpenWin       = "Opening Contacts Window"
	LogMsgSorted        = "Contacts sorted"

	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinCalc        = "win_calculator_title"
	TKeyWinContacts    = "win_contacts_title"
	TKeyMenuCalc       = "menu_calculator"
	TKeyMenuContacts   = "menu_contacts"
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuSettings   = "menu_settings"
	TKeyTrayStatus     = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero = "tray_status_zero" // Explicit key for 0
	TKeyNotifStart     = "notif_sync_start"
	TKeyNotifSuccess   = "notif_sync_success"
	TKeyNotifError     = "notif_err_sync"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblReminder    = "lbl_reminder_days"
	TKeyHelpReminder   = "help_reminder_days"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"

	// Calculator
	TKeyLblBirthDate   = "lbl_birth_date"
	TKeyHintBirthDate  = "hint_birth_date"
	TKeyBtnCalculate   = "btn_calculate"
	TKeyBtnCalculating = "btn_calculating"
	TKeyLblHeadline    = "lbl_headline"
	TKeyLblYears       = "lbl_years"
	TKeyLblMonths      = "lbl_months"
	TKeyLblDays        = "lbl_days"
	TKeyLblHours       = "lbl_hours"
	TKeyLblFunFacts    = "lbl_fun_facts"
	TKeyLblHeartbeats  = "lbl_heartbeats"
	TKeyLblBreaths     = "lbl_breaths"
	TKeyLblSteps       = "lbl_steps"
	TKeyErrBirthEmpty  = "err_birth_empty"
	TKeyErrBirthFormat = "err_birth_format"
	TKeyErrBirthFuture = "err_birth_future"

	// Calendar summaries
	TKeyEvtSummary      = "event_summary"       // Requires Name
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)
	TKeyEvtMilestone    = "event_milestone"     // Requires Name, Days

	// Contacts table
	TKeyColName      = "col_name"
	TKeyColAge       = "col_age"
	TKeyColDays      = "col_days"
	TKeyColMilestone = "col_milestone"
	TKeyFormatAge    = "format_age"        // Requires Years, Months, Days
	TKeyFormatDate   = "format_date_short" // Date format pattern (e.g., "2006-01-02")

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb       = "web"
	SourceModeLocal     = "local"
	DefaultPort         = "18080"
	DefaultRefreshMin   = 60
	DefaultLanguage     = "en"
	DefaultLeapYear     = 2000 // Leap year fallback for dates like --02-29
	DefaultReminderDays = 0
	UIDSalt             = "go-age-v1-" // Salt for deterministic UID generation
	DisabledInterval    = 0
)

// ISO8601 Duration Components for Reminders
const (
	ISONegativePrefix = "-P"
	ISODay            = "D"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Age//Engine//EN"
	ICalCalName   = "Age Milestones"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goage"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	CategoryBirthday  = "BIRTHDAY"
	CategoryMilestone = "MILESTONE"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for birth dates (user input and vCard BDAY)
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
	FormatUIDTagged = "%s-%s-%d@%s"
	UIDTagMilestone = "days"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	MaxAddressBookSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"
	RouteRoot          = "/"
	RouteAge           = "/age"
	QueryBirth         = "birth"
	AddrSeparator      = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeAcceptVCard     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidInput     = "invalid input"
	ErrBirthMissing     = "birth date is missing"
	ErrBirthUnparseable = "birth date is not a valid calendar date"
	ErrBirthFuture      = "birth date is after the reference date"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrFetchRequest     = "failed to create address book request"
	ErrFetchNetwork     = "network error during address book download"
	ErrFetchStatus      = "address book server returned unexpected status"
	ErrAddressBookSize  = "address book exceeds the download size limit"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrEncodeResp       = "failed to encode response"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrLocNotInit       = "localizer not initialized"
	ErrKeyringSave      = "failed to save credentials to keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadBirth     = "Query parameter 'birth' must be a date formatted as YYYY-MM-DD."
	HTTPMsgFutureBirth  = "Birth date cannot be in the future."
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackMilestone    = "%s: %s days old"
	FallbackAge          = "%dy %dm %dd"
	FallbackTrayError    = "Go Age: Sync Error"
	FallbackTrayDefault  = "Go Age (%d today)"
	FallbackTrayLabel    = "Go Age"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Sync Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgSyncStarted     = "Synchronization started..."
	MsgSyncFailed      = "Synchronization failed. Check logs."
	MsgSyncReq         = "Sync requested"
	MsgSyncSkipped     = "No contact source configured, skipping sync"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgUpdateSync      = "Updating sync interval"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedUnborn   = "Skipping contact born after today"
	MsgGenSuccess      = "Calendar generation successful"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgAgeServed       = "Age computed"
	MsgAgeRejected     = "Age request rejected"
	MsgAgeComputed     = "Age calculated"
	MsgAgeInvalid      = "Birth date rejected"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgMilestoneToday  = "Milestone found today"
	MsgHeadlessOutput  = "%s\n%s: %s\n%s: %s\n%s: %s\n%s: %s\n\n%s\n%s: %s\n%s: %s\n%s: %s\n"
	MsgHeadlessInvalid = "%s: %v\n"
	MsgFetchStart      = "Downloading address book"
	MsgFetchOpened     = "Address book download started"
	MsgFetchStatus     = "Address book server returned an error status"
	MsgFetchAborted    = "Address book download aborted"

	PlaceholderURL  = "https://..."
	PlaceholderDate = "YYYY-MM-DD"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "milestones_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyYears     = "years"
	LogKeyTotalDays = "total_days"
	LogKeyDays      = "days"
	LogKeyLength    = "content_length"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUICalc  = "ui_calculator"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
