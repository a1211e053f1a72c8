package scenario_test

import (
	"os"

	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner/fake"
	"csi-shared-resource-e2e/common/oc"
	"csi-shared-resource-e2e/common/project"
	"csi-shared-resource-e2e/common/scenario"
	"csi-shared-resource-e2e/common/share"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const (
	deleteSharedConfig = "oc delete sharedconfigmap my-shared-config -n default --ignore-not-found"
	deleteSharedSecret = "oc delete sharedsecret my-shared-secret -n default --ignore-not-found"
)

func countCalls(calls []string, cmd string) int {
	n := 0
	for _, c := range calls {
		if c == cmd {
			n++
		}
	}
	return n
}

var _ = Describe("Scenario controller", func() {
	var (
		cluster    *fake.Cluster
		projects   *project.Client
		controller *scenario.Controller
	)

	newController := func(opts scenario.Options) *scenario.Controller {
		return scenario.NewController(oc.New(cluster, "oc"), projects, opts)
	}

	BeforeEach(func() {
		cluster = fake.NewCluster("oc")
		projects = project.NewClient(cluster, classify.New(""), "oc")
		controller = newController(scenario.Options{})
	})

	Describe("before a scenario", func() {
		It("starts a scenario with a fresh context", func() {
			Expect(controller.State()).To(Equal(scenario.Idle))
			ctx, err := controller.Before("first")
			Expect(err).ToNot(HaveOccurred())
			Expect(controller.State()).To(Equal(scenario.Active))
			Expect(ctx.Name).To(Equal("first"))
			Expect(ctx.ID).ToNot(BeEmpty())
			Expect(ctx.Registry.Kinds()).To(BeEmpty())
			Expect(controller.Context()).To(BeIdenticalTo(ctx))
			Expect(cluster.Calls()).To(Equal([]string{"oc get project default"}))

			Expect(controller.After(nil)).To(Succeed())
			second, err := controller.Before("second")
			Expect(err).ToNot(HaveOccurred())
			Expect(second).ToNot(BeIdenticalTo(ctx))
			Expect(second.ID).ToNot(Equal(ctx.ID))
		})

		It("aborts the scenario when the cluster is unreachable", func() {
			cluster.Reachable = false
			ctx, err := controller.Before("unreachable")
			Expect(err).To(MatchError(scenario.ErrClusterUnreachable))
			Expect(ctx).To(BeNil())
			Expect(controller.State()).To(Equal(scenario.Idle))
			Expect(controller.After(err)).To(Succeed())
			Expect(cluster.Calls()).To(HaveLen(1))

			cluster.Reachable = true
			_, err = controller.Before("next")
			Expect(err).ToNot(HaveOccurred())
		})

		It("aborts the remaining scenarios when asked to", func() {
			controller = newController(scenario.Options{AbortRunOnProbeFailure: true})
			cluster.Reachable = false
			_, err := controller.Before("unreachable")
			Expect(err).To(MatchError(scenario.ErrClusterUnreachable))

			cluster.Reachable = true
			_, err = controller.Before("next")
			Expect(err).To(MatchError(scenario.ErrRunAborted))
			Expect(cluster.Calls()).To(HaveLen(1))
		})

		It("refuses to start a scenario twice", func() {
			_, err := controller.Before("first")
			Expect(err).ToNot(HaveOccurred())
			_, err = controller.Before("again")
			Expect(err).To(MatchError(scenario.ErrInvalidTransition))
			Expect(controller.State()).To(Equal(scenario.Active))
		})
	})

	Describe("after a scenario", func() {
		It("does nothing without a running scenario", func() {
			Expect(controller.After(nil)).To(Succeed())
			Expect(cluster.Calls()).To(BeEmpty())
		})

		It("tears down a failed scenario", func() {
			_, err := controller.Before("failing")
			Expect(err).ToNot(HaveOccurred())
			cluster.AddResource("sharedsecret", "my-shared-secret")
			Expect(controller.After(os.ErrNotExist)).To(Succeed())
			Expect(cluster.HasResource("sharedsecret", "my-shared-secret")).To(BeFalse())
			Expect(controller.State()).To(Equal(scenario.Idle))
			Expect(controller.Context()).To(BeNil())
		})

		It("returns to Idle when teardown fails", func() {
			cluster.AddProject("testing-namespacezz99")
			cluster.Extra["oc delete project testing-namespacezz99"] = fake.Fail(1, "Error from server (Forbidden)")
			_, err := controller.Before("stuck")
			Expect(err).ToNot(HaveOccurred())
			Expect(controller.After(nil)).To(MatchError(ContainSubstring("testing-namespacezz99")))
			Expect(controller.State()).To(Equal(scenario.Idle))
		})
	})

	It("runs the demo scenario end to end", func() {
		ctx, err := controller.Before("demo")
		Expect(err).ToNot(HaveOccurred())

		p := projects.Project("demo")
		Expect(p.IsPresent()).To(BeFalse())
		Expect(p.Ensure()).To(BeTrue())
		ctx.UseProject(p)
		Expect(ctx.Project.Name).To(Equal("demo"))
		Expect(ctx.CurrentProject).To(Equal("demo"))

		Expect(ctx.Registry.Register("my-shared-config", "sharedconfigmap")).To(Succeed())
		cluster.AddResource("sharedconfigmap", "my-shared-config")
		Expect(projects.CreateNamespace("testing-namespaceab12")).To(BeTrue())

		Expect(controller.After(nil)).To(Succeed())
		Expect(cluster.HasResource("sharedconfigmap", "my-shared-config")).To(BeFalse())
		Expect(cluster.HasProject("testing-namespaceab12")).To(BeFalse())
		Expect(cluster.HasProject("demo")).To(BeTrue())
		Expect(cluster.Calls()).To(ContainElement(deleteSharedConfig))
		Expect(cluster.Calls()).To(ContainElement("oc delete project testing-namespaceab12"))
	})
})

var _ = Describe("Teardown", func() {
	var (
		cluster    *fake.Cluster
		controller *scenario.Controller
	)

	BeforeEach(func() {
		cluster = fake.NewCluster("oc")
		projects := project.NewClient(cluster, classify.New(""), "oc")
		controller = scenario.NewController(oc.New(cluster, "oc"), projects, scenario.Options{})
	})

	It("deletes only namespaces carrying the marker", func() {
		cluster.AddProject("testing-namespaceab12")
		cluster.AddProject("demo")
		Expect(controller.TestingNamespaces()).To(Equal([]string{"testing-namespaceab12"}))

		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(cluster.Projects()).To(Equal([]string{"default", "demo"}))
		Expect(countCalls(cluster.Calls(), "oc delete project testing-namespaceab12")).To(Equal(1))
		Expect(countCalls(cluster.Calls(), "oc delete project demo")).To(BeZero())
		Expect(countCalls(cluster.Calls(), "oc delete project default")).To(BeZero())
	})

	It("accepts a marker namespace that disappeared before its deletion", func() {
		cluster.AddProject("testing-namespaceab12")
		cluster.Extra["oc delete project testing-namespaceab12"] = fake.Fail(1,
			`Error from server (NotFound): projects.project.openshift.io "testing-namespaceab12" not found`)
		Expect(controller.Teardown(nil)).To(Succeed())
	})

	It("accepts a marker namespace that is still terminating", func() {
		cluster.AddProject("testing-namespaceab12")
		cluster.Extra["oc delete project testing-namespaceab12"] = fake.Fail(1,
			`Error from server (Conflict): Operation cannot be fulfilled on namespaces "testing-namespaceab12": `+
				`The system is ensuring all content is removed from this namespace.  Upon completion, this namespace will automatically be purged by the system.`)
		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(controller.Teardown(nil)).To(Succeed())
	})

	It("is idempotent", func() {
		cluster.AddResource("sharedconfigmap", "my-shared-config")
		cluster.AddResource("sharedsecret", "my-shared-secret")
		cluster.AddProject("testing-namespaceab12")

		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(countCalls(cluster.Calls(), deleteSharedConfig)).To(Equal(1))
		Expect(countCalls(cluster.Calls(), deleteSharedSecret)).To(Equal(1))
	})

	It("skips kinds with nothing to delete", func() {
		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(cluster.Calls()).To(Equal([]string{
			"oc get sharedconfigmap",
			"oc get sharedsecret",
			"oc projects -q",
		}))
	})

	It("deletes registered names along with the conventional name", func() {
		registry := share.NewRegistry()
		Expect(registry.Register("other-config", "sharedconfigmap")).To(Succeed())
		cluster.AddResource("sharedconfigmap", "other-config")
		cluster.AddResource("sharedconfigmap", "my-shared-config")

		Expect(controller.Teardown(registry)).To(Succeed())
		Expect(cluster.HasResource("sharedconfigmap", "other-config")).To(BeFalse())
		Expect(cluster.HasResource("sharedconfigmap", "my-shared-config")).To(BeFalse())
	})

	It("does not delete the conventional name twice", func() {
		registry := share.NewRegistry()
		Expect(registry.Register("my-shared-config", "sharedconfigmap")).To(Succeed())
		cluster.AddResource("sharedconfigmap", "my-shared-config")

		Expect(controller.Teardown(registry)).To(Succeed())
		Expect(countCalls(cluster.Calls(), deleteSharedConfig)).To(Equal(1))
	})

	It("uses the configured namespace and marker", func() {
		controller = scenario.NewController(oc.New(cluster, "oc"), project.NewClient(cluster, classify.New(""), "oc"),
			scenario.Options{SharedNamespace: "shared", Marker: "smoke-"})
		cluster.AddResource("sharedsecret", "my-shared-secret")
		cluster.AddProject("smoke-xy12")
		cluster.AddProject("testing-namespaceab12")

		Expect(controller.Teardown(nil)).To(Succeed())
		Expect(cluster.Calls()).To(ContainElement("oc delete sharedsecret my-shared-secret -n shared --ignore-not-found"))
		Expect(cluster.Projects()).To(Equal([]string{"default", "testing-namespaceab12"}))
	})
})

var _ = Describe("Scenario names", func() {
	AfterEach(func() {
		os.Unsetenv("TEST_NAMESPACE")
	})

	It("substitutes TEST_NAMESPACE when set", func() {
		Expect(scenario.SubstituteEnvName("Shared Secret in the TEST_NAMESPACE project")).To(Equal("Shared Secret in the TEST_NAMESPACE project"))
		os.Setenv("TEST_NAMESPACE", "team-a")
		Expect(scenario.SubstituteEnvName("Shared Secret in the TEST_NAMESPACE project")).To(Equal("Shared Secret in the team-a project"))
		Expect(scenario.SubstituteEnvName("plain")).To(Equal("plain"))
	})

	It("names every state", func() {
		Expect([]string{scenario.Idle.String(), scenario.PreScenario.String(), scenario.Active.String(), scenario.PostScenario.String()}).
			To(Equal([]string{"Idle", "PreScenario", "Active", "PostScenario"}))
	})
})
