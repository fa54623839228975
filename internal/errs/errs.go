package errs

import "fmt"

type Code string

const (
	MissingPlatform Code = "MISSING_PLATFORM"
	EmptySelection  Code = "EMPTY_SELECTION"
	RevWithLatest   Code = "REV_WITH_LATEST"
	NegativeLimit   Code = "NEGATIVE_LIMIT"
)

var messages = map[Code]string{
	MissingPlatform: `Missing required flag: --platform

Usage:
  fwfetch --platform opsis
  fwfetch --board opsis --target hdmi2usb --arch lm32

Hint:
  Platforms are listed as the first step of every download, or browse them with:
      fwfetch --platform <anything> --dry-run`,

	EmptySelection: `Invalid value: --%[1]s cannot be empty

Usage:
  fwfetch --platform opsis --%[1]s <value>`,

	RevWithLatest: `Invalid flag combination: cannot combine --rev with --latest

Usage:
  - Download an exact revision:
      fwfetch --platform opsis --rev v0.0.4-44-g0cd842f
  - Download the newest revision:
      fwfetch --platform opsis --latest

Reason:
  --rev pins a revision, --latest asks for whatever is newest.`,

	NegativeLimit: `Invalid value: --limit must be zero (no limit) or positive, got %[1]d`,
}

func Msg(code Code, a ...any) string {
	msg := messages[code]
	if msg == "" {
		msg = string(code)
	}
	return fmt.Sprintf(msg, a...)
}
