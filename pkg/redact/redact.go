// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов клиента (e-mail, токены, заголовок Authorization).
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - строка должна содержать РОВНО один символ '@', иначе возвращается "***";
//   - локальная часть заменяется на первые два символа (по рунам) + "***";
//   - если локальная часть не длиннее 2 символов — "***@<domain>".
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }

// Args возвращает копию аргументов командной строки, в которой значения
// флагов с "password" в имени заменены на Password(). Понимает формы
// "--password x", "-password x" и "--password=x".
func Args(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	for i := 0; i < len(out); i++ {
		a := out[i]
		if !strings.HasPrefix(a, "-") {
			continue
		}

		name := strings.TrimLeft(a, "-")
		if j := strings.IndexByte(name, '='); j >= 0 {
			if strings.Contains(name[:j], "password") {
				out[i] = a[:len(a)-len(name)+j+1] + Password()
			}
			continue
		}

		if strings.Contains(name, "password") && i+1 < len(out) {
			out[i+1] = Password()
			i++
		}
	}

	return out
}

// Presence сообщает только факт наличия секрета: "set" или "empty".
// Используется там, где полезно видеть, был ли токен, но не его значение.
func Presence(secret string) string {
	if secret == "" {
		return "empty"
	}

	return "set"
}
