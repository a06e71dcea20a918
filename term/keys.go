package term

// Key codes delivered with "key" and "key_up" events. The numbering follows
// LWJGL 2, which guest programs expect.
const (
	KeyEscape       = 1
	Key1            = 2
	Key2            = 3
	Key3            = 4
	Key4            = 5
	Key5            = 6
	Key6            = 7
	Key7            = 8
	Key8            = 9
	Key9            = 10
	Key0            = 11
	KeyMinus        = 12
	KeyEquals       = 13
	KeyBackspace    = 14
	KeyTab          = 15
	KeyQ            = 16
	KeyW            = 17
	KeyE            = 18
	KeyR            = 19
	KeyT            = 20
	KeyY            = 21
	KeyU            = 22
	KeyI            = 23
	KeyO            = 24
	KeyP            = 25
	KeyLeftBracket  = 26
	KeyRightBracket = 27
	KeyEnter        = 28
	KeyLeftCtrl     = 29
	KeyA            = 30
	KeyS            = 31
	KeyD            = 32
	KeyF            = 33
	KeyG            = 34
	KeyH            = 35
	KeyJ            = 36
	KeyK            = 37
	KeyL            = 38
	KeySemicolon    = 39
	KeyApostrophe   = 40
	KeyGrave        = 41
	KeyLeftShift    = 42
	KeyBackslash    = 43
	KeyZ            = 44
	KeyX            = 45
	KeyC            = 46
	KeyV            = 47
	KeyB            = 48
	KeyN            = 49
	KeyM            = 50
	KeyComma        = 51
	KeyPeriod       = 52
	KeySlash        = 53
	KeyRightShift   = 54
	KeyLeftAlt      = 56
	KeySpace        = 57
	KeyCapsLock     = 58
	KeyF1           = 59
	KeyF2           = 60
	KeyF3           = 61
	KeyF4           = 62
	KeyF5           = 63
	KeyF6           = 64
	KeyF7           = 65
	KeyF8           = 66
	KeyF9           = 67
	KeyF10          = 68
	KeyF11          = 87
	KeyF12          = 88
	KeyNumPadEnter  = 156
	KeyHome         = 199
	KeyUp           = 200
	KeyPageUp       = 201
	KeyLeft         = 203
	KeyRight        = 205
	KeyEnd          = 207
	KeyDown         = 208
	KeyPageDown     = 209
	KeyInsert       = 210
	KeyDelete       = 211
)

var runeKeys = map[rune]int{
	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,
	'!': Key1, '@': Key2, '#': Key3, '$': Key4, '%': Key5,
	'^': Key6, '&': Key7, '*': Key8, '(': Key9, ')': Key0,
	'-': KeyMinus, '_': KeyMinus, '=': KeyEquals, '+': KeyEquals,
	'[': KeyLeftBracket, '{': KeyLeftBracket, ']': KeyRightBracket, '}': KeyRightBracket,
	';': KeySemicolon, ':': KeySemicolon, '\'': KeyApostrophe, '"': KeyApostrophe,
	'`': KeyGrave, '~': KeyGrave, '\\': KeyBackslash, '|': KeyBackslash,
	',': KeyComma, '<': KeyComma, '.': KeyPeriod, '>': KeyPeriod,
	'/': KeySlash, '?': KeySlash, ' ': KeySpace,
	'q': KeyQ, 'w': KeyW, 'e': KeyE, 'r': KeyR, 't': KeyT,
	'y': KeyY, 'u': KeyU, 'i': KeyI, 'o': KeyO, 'p': KeyP,
	'a': KeyA, 's': KeyS, 'd': KeyD, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'j': KeyJ, 'k': KeyK, 'l': KeyL,
	'z': KeyZ, 'x': KeyX, 'c': KeyC, 'v': KeyV, 'b': KeyB,
	'n': KeyN, 'm': KeyM,
}

// RuneKey returns the key code of the key that produces r on a US layout.
func RuneKey(r rune) (int, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	code, ok := runeKeys[r]
	return code, ok
}

// IsPrintable reports whether r is delivered as a "char" event.
func IsPrintable(r rune) bool {
	return r >= 0x20 && r <= 0x7E
}
