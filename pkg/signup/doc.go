// Package signup implements the two-step freelancer/client signup wizard.
//
// Step 1 (AccountStep) validates identity fields and stores them as a
// SignupDraft in a draftstore.Store keyed by the browser session. Step 2
// (DetailsController) mounts from that draft, presents the Variant chosen by
// the draft's account type, collects job or company details plus a TagSet of
// skills or services, and hands the merged CompleteSignupData to a Finalizer.
//
//	wizard := signup.NewWizard(
//		signup.WithDraftStore(store),
//		signup.WithFinalizer(accountService),
//	)
//
//	next, err := wizard.SubmitAccount(ctx, sessionID, draft) // RouteSignupDetails
//
//	page, redirect, err := wizard.Details(ctx, sessionID)
//	if redirect != "" {
//		// no draft for this session, go back to step 1
//	}
//	page.SetField(signup.FieldJobTitle, "Backend developer")
//	page.ToggleSkill("SEO")
//
//	next, err = wizard.Submit(ctx, sessionID) // RouteAccountType
//
// Freelancers must select at least FreelancerMinSkills skills. While a
// submission is in flight the controller reports CanSubmit() == false and a
// second Submit fails with ErrCodeSubmissionInFlight. A failed submission
// leaves the draft in the store so the user can retry.
package signup
