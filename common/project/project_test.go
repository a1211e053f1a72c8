package project

import (
	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner/fake"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Project lifecycle", func() {
	var (
		cluster *fake.Cluster
		client  *Client
	)

	BeforeEach(func() {
		cluster = fake.NewCluster("oc")
		client = NewClient(cluster, classify.New("openshift.io"), "oc")
	})

	It("creates a missing project and selects it", func() {
		Expect(client.IsPresent("demo")).To(BeFalse())
		Expect(client.Create("demo")).To(BeTrue())
		Expect(client.IsPresent("demo")).To(BeTrue())
		Expect(client.CurrentProject()).To(Equal("demo"))
	})

	It("creates idempotently", func() {
		Expect(client.Create("demo")).To(BeTrue())
		Expect(client.Create("demo")).To(BeTrue())
		Expect(client.CurrentProject()).To(Equal("demo"))
	})

	It("switches to a project that exists but is not selected", func() {
		cluster.AddProject("demo")
		Expect(client.CurrentProject()).To(Equal("default"))
		Expect(client.Create("demo")).To(BeTrue())
		Expect(client.CurrentProject()).To(Equal("demo"))
		Expect(cluster.Calls()).To(ContainElement("oc project demo"))
	})

	It("fails on unexpected output", func() {
		cluster.Extra["oc new-project demo"] = fake.Fail(1, "error: You must be logged in to the server (Unauthorized)")
		Expect(client.Create("demo")).To(BeFalse())
	})

	It("fails closed on a successful exit with unknown text", func() {
		cluster.Extra["oc new-project demo"] = fake.Ok("project created, probably")
		Expect(client.Create("demo")).To(BeFalse())
	})

	It("rejects names the cluster would refuse", func() {
		Expect(client.Create("Not_A_Name")).To(BeFalse())
		Expect(cluster.Calls()).To(BeEmpty())
	})

	It("switches between projects", func() {
		cluster.AddProject("demo")
		Expect(client.SwitchTo("demo")).To(BeTrue())
		Expect(client.SwitchTo("demo")).To(BeTrue())
		Expect(client.SwitchTo("missing")).To(BeFalse())
	})

	It("lists every project, one per line", func() {
		cluster.AddProject("demo")
		Expect(client.ListAll()).To(Equal("default\ndemo\n"))
	})

	It("finds namespaces by substring", func() {
		cluster.AddProject("testing-namespaceab12")
		Expect(client.NamespaceExists("testing-namespace")).To(BeTrue())
		Expect(client.NamespaceExists("other")).To(BeFalse())
	})

	It("creates and deletes namespaces by exit code", func() {
		Expect(client.CreateNamespace("testing-namespaceab12")).To(BeTrue())
		Expect(client.CreateNamespace("testing-namespaceab12")).To(BeFalse())
		Expect(client.DeleteNamespace("testing-namespaceab12")).To(BeTrue())
		Expect(client.DeleteNamespace("testing-namespaceab12")).To(BeFalse())
	})

	It("accepts a deletion without confirmation text", func() {
		cluster.Extra["oc delete project quiet"] = fake.Ok("")
		Expect(client.DeleteNamespace("quiet")).To(BeTrue())
	})

	It("quotes the namespace filter for the shell", func() {
		cluster.AddProject("testing-namespaceab12")
		Expect(client.NamespaceExists("testing-*")).To(BeFalse())
		Expect(cluster.Calls()).To(ContainElement("oc get projects | grep -- 'testing-*'"))
	})

	It("refuses names that are not DNS labels before running anything", func() {
		Expect(client.IsPresent("demo; rm -rf /")).To(BeFalse())
		Expect(client.SwitchTo("$(id)")).To(BeFalse())
		Expect(client.DeleteNamespace("a b")).To(BeFalse())
		Expect(cluster.Calls()).To(BeEmpty())
	})

	Describe("removing namespaces for cleanup", func() {
		It("deletes an existing namespace", func() {
			cluster.AddProject("testing-namespaceab12")
			Expect(client.RemoveNamespace("testing-namespaceab12")).To(Succeed())
			Expect(cluster.HasProject("testing-namespaceab12")).To(BeFalse())
		})

		It("accepts a namespace that is already gone", func() {
			Expect(client.RemoveNamespace("testing-namespaceab12")).To(Succeed())
		})

		It("accepts a namespace that is still terminating", func() {
			cluster.Extra["oc delete project testing-namespaceab12"] = fake.Fail(1,
				`Error from server (Conflict): Operation cannot be fulfilled on namespaces "testing-namespaceab12": `+
					`The system is ensuring all content is removed from this namespace.  Upon completion, this namespace will automatically be purged by the system.`)
			Expect(client.RemoveNamespace("testing-namespaceab12")).To(Succeed())
		})

		It("reports any other failure", func() {
			cluster.Extra["oc delete project testing-namespaceab12"] = fake.Fail(1, "Error from server (Forbidden)")
			Expect(client.RemoveNamespace("testing-namespaceab12")).To(MatchError(ContainSubstring("Forbidden")))
		})
	})
})

var _ = Describe("Project handle", func() {
	var cluster *fake.Cluster
	var client *Client

	BeforeEach(func() {
		cluster = fake.NewCluster("oc")
		client = NewClient(cluster, classify.New(""), "oc")
	})

	It("never caches existence", func() {
		p := client.Project("demo")
		Expect(p.IsPresent()).To(BeFalse())
		cluster.AddProject("demo")
		Expect(p.IsPresent()).To(BeTrue())
	})

	It("ensures a missing project by creating it", func() {
		p := client.Project("demo")
		Expect(p.Ensure()).To(BeTrue())
		Expect(cluster.HasProject("demo")).To(BeTrue())
		Expect(cluster.Current()).To(Equal("demo"))
	})

	It("ensures an existing project by selecting it", func() {
		cluster.AddProject("demo")
		p := client.Project("demo")
		Expect(p.Ensure()).To(BeTrue())
		Expect(cluster.Current()).To(Equal("demo"))
		Expect(cluster.Calls()).ToNot(ContainElement("oc new-project demo"))
	})
})
