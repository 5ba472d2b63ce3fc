package logwatch

import "regexp"

// Client.txt line shapes, e.g.
// 2024/01/15 12:34:56 12345678 abc [INFO Client 1234] You have entered The Coast.
var (
	zoneEnterRe       = regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}).*\] You have entered (.+)\.`)
	levelUpRe         = regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}).*\] (.+?) \((.+?)\) is now level (\d+)`)
	deathRe           = regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}).*\] (.+?) has been slain\.`)
	instanceDetailsRe = regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}).*\] Got Instance Details`)
	loginRe           = regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}).*\] Connecting to instance server`)
)
