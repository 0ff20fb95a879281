package main

// Numeric reply codes, per spec.md §4.5. Named the way horgh/irc names
// its own handful of numeric constants (ReplyWelcome, ReplyYoureOper),
// extended here to cover every code this server issues.
const (
	ReplyWelcome       = "001"
	ReplyNoTopic       = "331"
	ReplyTopic         = "332"
	ReplyInviting      = "341"
	ReplyNameReply     = "353"
	ReplyEndOfNames    = "366"
	ReplyWhoReply      = "352"
	ReplyEndOfWho      = "315"
	ReplyWhoisUser     = "311"
	ReplyEndOfWhois    = "318"
	ReplyChannelModeIs = "324"

	ErrNoSuchNick       = "401"
	ErrNoSuchChannel    = "403"
	ErrCannotSendToChan = "404"
	ErrUnknownCommand   = "421"
	ErrNoNicknameGiven  = "431"
	ErrNicknameInUse    = "433"
	ErrNotOnChannel     = "441"
	ErrNotRegistered    = "451"
	ErrNeedMoreParams   = "461"
	ErrPasswdMismatch   = "464"
	ErrChannelIsFull    = "471"
	ErrUnknownMode      = "472"
	ErrInviteOnlyChan   = "473"
	ErrBadChannelKey    = "475"
	ErrChanOPrivsNeeded = "482"
)
