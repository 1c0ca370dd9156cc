package naemon

// MockCall records a single invocation observed by MockRunner.
type MockCall struct {
	Mode    string
	MainCfg string
}

// MockRunner is a Runner returning canned exit codes while recording every
// call made against it. Tests inspect Calls to assert on invocation order
// and arguments without a daemon binary present.
type MockRunner struct {
	VerifyCode int
	StartCode  int
	Err        error
	Calls      []MockCall
}

func (m *MockRunner) Verify(mainCfg string) (int, error) {
	m.Calls = append(m.Calls, MockCall{Mode: "-v", MainCfg: mainCfg})
	if m.Err != nil {
		return -1, m.Err
	}
	return m.VerifyCode, nil
}

func (m *MockRunner) Start(mainCfg string) (int, error) {
	m.Calls = append(m.Calls, MockCall{Mode: "-d", MainCfg: mainCfg})
	if m.Err != nil {
		return -1, m.Err
	}
	return m.StartCode, nil
}
