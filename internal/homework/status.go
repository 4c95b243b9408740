package homework

import "fmt"

// Verdicts maps a review status to the phrase shown to the student.
var Verdicts = map[string]string{
	"approved":  "Работа проверена: ревьюеру всё понравилось. Ура!",
	"reviewing": "Работа взята на проверку ревьюером.",
	"rejected":  "Работа проверена: у ревьюера есть замечания.",
}

// ParseStatus builds the notification text for one homework record.
func ParseStatus(r Record) (string, error) {
	rawName, ok := r[keyName]
	if !ok || rawName == nil {
		return "", fmt.Errorf("%w: В домашке нет ключа %s", ErrMissingField, keyName)
	}
	name := fmt.Sprint(rawName)

	status, _ := r[keyStatus].(string)
	verdict, ok := Verdicts[status]
	if !ok {
		return "", fmt.Errorf("%w: Неожиданный статус домашней работы. Полученный статус: %v", ErrUnknownStatus, r[keyStatus])
	}
	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", name, verdict), nil
}
