package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed defaults applied when a key row carries an unrecognized answer
// label. Applying a default keeps the row usable instead of dropping it.
const (
	DefaultTrueFalseAnswer      = "t"
	DefaultMultipleChoiceAnswer = "a"
)

// DefaultTFThreshold is the number-range cut used when a type label is not
// recognized: numbers below it default to true/false, the rest to multiple
// choice. Matches the bank's 1-19 / 20-45 split.
const DefaultTFThreshold = 20

var typeLabels = map[string]QuestionType{
	"tf":              TrueFalse,
	"t/f":             TrueFalse,
	"truefalse":       TrueFalse,
	"true/false":      TrueFalse,
	"true or false":   TrueFalse,
	"mc":              MultipleChoice,
	"mcq":             MultipleChoice,
	"multiplechoice":  MultipleChoice,
	"multiple choice": MultipleChoice,
}

// NormalizeType maps a trimmed, lowercased type label to a QuestionType.
// Unknown labels fall back to the numeric-range policy around threshold.
func NormalizeType(label string, number, threshold int) QuestionType {
	if t, ok := typeLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	if threshold <= 0 {
		threshold = DefaultTFThreshold
	}
	if number < threshold {
		return TrueFalse
	}
	return MultipleChoice
}

// CanonicalAnswer normalizes a raw answer token into the canonical domain
// for the type. For true/false it accepts t/f and the spelled-out words;
// for multiple choice it accepts letters a-d (any case) and the digit
// indexes 0-3. ok is false when the token is outside the domain.
func CanonicalAnswer(t QuestionType, raw string) (string, bool) {
	tok := strings.ToLower(strings.TrimSpace(raw))
	switch t {
	case TrueFalse:
		switch tok {
		case "t", "true":
			return "t", true
		case "f", "false":
			return "f", true
		}
	case MultipleChoice:
		switch tok {
		case "a", "b", "c", "d":
			return tok, true
		case "0", "1", "2", "3":
			i, _ := strconv.Atoi(tok)
			return string(rune('a' + i)), true
		}
	}
	return "", false
}

// MakeEntry builds a key entry from raw source labels, applying the
// documented defaults. defaulted reports whether the answer label had to be
// replaced, so loaders can log it.
func MakeEntry(number int, typeLabel, answerLabel string, threshold int) (entry KeyEntry, defaulted bool) {
	t := NormalizeType(typeLabel, number, threshold)
	answer, ok := CanonicalAnswer(t, answerLabel)
	if !ok {
		defaulted = true
		answer = DefaultTrueFalseAnswer
		if t == MultipleChoice {
			answer = DefaultMultipleChoiceAnswer
		}
	}
	return KeyEntry{Number: number, Type: t, Answer: answer}, defaulted
}

// SyntheticKey generates a deterministic answer key of the given size:
// alternating t/f below the threshold, round-robin a-d at and above it.
// Used as the fallback when the real source cannot be read at all.
func SyntheticKey(size, threshold int) AnswerKey {
	if threshold <= 0 {
		threshold = DefaultTFThreshold
	}
	key := make(AnswerKey, size)
	for n := 1; n <= size; n++ {
		if n < threshold {
			answer := "t"
			if n%2 == 0 {
				answer = "f"
			}
			key[n] = KeyEntry{Number: n, Type: TrueFalse, Answer: answer}
		} else {
			key[n] = KeyEntry{Number: n, Type: MultipleChoice, Answer: string(rune('a' + (n-threshold)%4))}
		}
	}
	return key
}

// CallbackNamespace tags question-flow button payloads; clicks with any
// other tag are not routed into the session machine.
const CallbackNamespace = "answer"

// Callback is a parsed question-flow button click.
type Callback struct {
	Number int
	Token  string
}

// ParseCallback splits the 3-field payload "answer_<number>_<token>".
// Anything else, including payloads from outside the quiz namespace,
// yields ErrMalformedPayload.
func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(strings.TrimSpace(data), "_")
	if len(parts) != 3 || parts[0] != CallbackNamespace {
		return Callback{}, fmt.Errorf("%w: %q", ErrMalformedPayload, data)
	}
	number, err := strconv.Atoi(parts[1])
	if err != nil {
		return Callback{}, fmt.Errorf("%w: bad question number %q", ErrMalformedPayload, parts[1])
	}
	return Callback{Number: number, Token: parts[2]}, nil
}

// CallbackData renders the payload for one answer button.
func CallbackData(number int, token string) string {
	return fmt.Sprintf("%s_%d_%s", CallbackNamespace, number, token)
}
