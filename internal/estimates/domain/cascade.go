package domain

import (
	jobsdomain "github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	wsdomain "github.com/alimtiger/Minibini-sub000/internal/worksheets/domain"
)

// DeriveWorksheetStatus maps an estimate status to the worksheet status the
// cascade drives linked worksheets toward. The second return is false for
// estimate statuses with no worksheet effect.
func DeriveWorksheetStatus(s Status) (wsdomain.Status, bool) {
	switch s {
	case StatusDraft:
		return wsdomain.StatusDraft, true
	case StatusOpen, StatusAccepted, StatusRejected:
		return wsdomain.StatusFinal, true
	case StatusSuperseded:
		return wsdomain.StatusSuperseded, true
	}
	return "", false
}

// PlanJobCascade returns the ordered job status steps an estimate
// transition drives, honoring the job status engine: acceptance advances
// the job toward approved one legal step at a time, and superseding a
// previously accepted estimate parks the job behind the blocked marker.
// Jobs already in a terminal state are never touched.
func PlanJobCascade(from, to Status, job jobsdomain.Status) []jobsdomain.Status {
	if jobsdomain.IsTerminal(job) && job != jobsdomain.StatusBlocked {
		return nil
	}

	switch {
	case to == StatusAccepted:
		switch job {
		case jobsdomain.StatusDraft:
			return []jobsdomain.Status{jobsdomain.StatusSubmitted, jobsdomain.StatusApproved}
		case jobsdomain.StatusSubmitted:
			return []jobsdomain.Status{jobsdomain.StatusApproved}
		case jobsdomain.StatusBlocked:
			return []jobsdomain.Status{jobsdomain.StatusApproved}
		}
		return nil

	case to == StatusSuperseded && from == StatusAccepted:
		if job == jobsdomain.StatusApproved {
			return []jobsdomain.Status{jobsdomain.StatusBlocked}
		}
		return nil
	}

	return nil
}
