package authflow

import "testing"

func defaultPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, RequireUppercase: true, RequireDigit: true}
}

func TestValidateLoginBothFieldsMissing(t *testing.T) {
	errs := ValidateLogin("", "")
	if len(errs) != 2 {
		t.Fatalf("got %d field errors, want 2", len(errs))
	}
	if errs[0].Field != FieldLoginIdentifier || errs[1].Field != FieldLoginPassword {
		t.Fatalf("unexpected fields: %v", errs)
	}
}

func TestValidateLoginWhitespaceIdentifier(t *testing.T) {
	errs := ValidateLogin("   ", "secret")
	if len(errs) != 1 || errs[0].Field != FieldLoginIdentifier {
		t.Fatalf("whitespace identifier not rejected: %v", errs)
	}
}

func TestValidateLoginAcceptsUsername(t *testing.T) {
	// Login identifiers are not required to be email-shaped.
	if errs := ValidateLogin("alex", "secret"); len(errs) != 0 {
		t.Fatalf("plain username rejected: %v", errs)
	}
}

func TestValidateSignupReportsAllErrors(t *testing.T) {
	errs := ValidateSignup("", "not-an-email", "short", "different", defaultPolicy())
	if len(errs) != 4 {
		t.Fatalf("got %d field errors, want 4 (no short-circuit)", len(errs))
	}
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{FieldSignupName, FieldSignupEmail, FieldSignupPassword, FieldSignupConfirm} {
		if !fields[want] {
			t.Fatalf("missing error for %s", want)
		}
	}
}

func TestValidateSignupEmailShapes(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"you@example.com", true},
		{"a@b.co", true},
		{"missing-at.example.com", false},
		{"no@tld", false},
		{"spaces in@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		errs := ValidateSignup("Alex Johnson", tc.email, "Str0ngPass!", "Str0ngPass!", defaultPolicy())
		invalid := false
		for _, e := range errs {
			if e.Field == FieldSignupEmail {
				invalid = true
			}
		}
		if invalid == tc.ok {
			t.Errorf("email %q: invalid=%v, want ok=%v", tc.email, invalid, tc.ok)
		}
	}
}

func TestPasswordPolicyMessages(t *testing.T) {
	policy := defaultPolicy()

	cases := []struct {
		password string
		want     string
	}{
		{"short", "Password must be at least 8 characters"},
		{"longenoughbutlower1", "Password must contain at least one uppercase letter"},
		{"LongEnoughNoDigit", "Password must contain at least one number"},
		{"Acceptable1", ""},
	}
	for _, tc := range cases {
		if got := policy.check(tc.password); got != tc.want {
			t.Errorf("check(%q) = %q, want %q", tc.password, got, tc.want)
		}
	}
}

func TestValidateNewPasswordMismatch(t *testing.T) {
	errs := ValidateNewPassword("Acceptable1", "Acceptable2", defaultPolicy())
	if len(errs) != 1 || errs[0].Field != FieldResetConfirm {
		t.Fatalf("mismatch not flagged on confirm field: %v", errs)
	}
	if errs[0].Message != "Passwords do not match" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}
